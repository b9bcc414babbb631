package wsprogress

import "time"

// Event types the server pushes to a connected client.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventFinished = "finished"
)

// Event is one sig_progress/sig_results/sig_finished notification,
// re-expressed as a JSON frame over the websocket connection.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`

	Progress float64 `json:"progress,omitempty"`
	NodeID   int     `json:"node_id,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// NewEvent builds an Event stamped with the current time.
func NewEvent(eventType, runID string) *Event {
	return &Event{Type: eventType, Timestamp: time.Now(), RunID: runID}
}
