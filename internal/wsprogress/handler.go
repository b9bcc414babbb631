package wsprogress

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades GET /runs/{id}/stream to a websocket connection
// subscribed to that run's events.
type Handler struct {
	hub *Hub
	log zerolog.Logger
}

// NewHandler builds a Handler over hub.
func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		http.Error(w, "run id required", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := NewClient(h.hub, conn, runID)
	h.hub.Register(client)
	h.log.Info().Str("run_id", runID).Msg("progress client connected")

	go client.writePump()
	go client.readPump()
}
