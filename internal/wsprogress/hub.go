package wsprogress

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub fans events out to every client subscribed to a given run_id.
// It owns no transport details; clients register/unregister themselves and
// the hub only tracks the run_id -> clients index.
type Hub struct {
	clients    map[*Client]bool
	byRunID    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg

	log zerolog.Logger
	mu  sync.RWMutex
}

type broadcastMsg struct {
	runID string
	event *Event
}

// NewHub builds an unstarted Hub; call Run in a goroutine before use.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byRunID:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		log:        log,
	}
}

// Run is the hub's event loop. It never returns, so the hub lives for the
// process lifetime.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	if h.byRunID[c.runID] == nil {
		h.byRunID[c.runID] = make(map[*Client]bool)
	}
	h.byRunID[c.runID][c] = true
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if set, ok := h.byRunID[c.runID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byRunID, c.runID)
		}
	}
}

func (h *Hub) deliver(msg *broadcastMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byRunID[msg.runID] {
		select {
		case c.send <- msg.event:
		default:
			h.log.Warn().Str("run_id", msg.runID).Msg("client send buffer full, dropping event")
		}
	}
}

// Broadcast pushes event to every client subscribed to runID.
func (h *Hub) Broadcast(runID string, event *Event) {
	h.broadcast <- &broadcastMsg{runID: runID, event: event}
}

// Register enrolls a client, to be called before starting its pumps.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
