package wsprogress

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client is one subscriber connection, pinned to a single run_id: this hub
// relays progress/result/finished events, it does not accept client
// commands, so there is no readPump command dispatch to speak of beyond
// keeping the connection alive.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan *Event
	runID string
}

// NewClient wraps conn as a Client subscribed to runID's events.
func NewClient(hub *Hub, conn *websocket.Conn, runID string) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan *Event, sendBufferSize), runID: runID}
}

// readPump only exists to detect the peer going away; pongs extend the
// read deadline, incoming messages are read and discarded, and a read
// error (timeout, close, oversized message) ends the connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
