package wsprogress

import (
	"time"

	"github.com/pydidas/pydidas-go/internal/worker"
)

// Pump relays one run's EventBus onto hub as Event frames, until the bus
// signals Finished. It reads the bus's Progress, Results and Finished
// channels itself, so it must be the only reader of that bus: an AppRunner
// driving the same bus reads those channels too, and each event would go to
// only one of the two readers.
func Pump(hub *Hub, runID string, bus *worker.EventBus) {
	for {
		select {
		case p, ok := <-bus.Progress:
			if !ok {
				return
			}
			hub.Broadcast(runID, &Event{Type: EventProgress, Timestamp: time.Now(), RunID: runID, Progress: p})
		case res, ok := <-bus.Results:
			if !ok {
				return
			}
			for nodeID := range res.Result {
				hub.Broadcast(runID, &Event{Type: EventResult, Timestamp: time.Now(), RunID: runID, NodeID: nodeID})
			}
		case <-bus.Finished:
			hub.Broadcast(runID, NewEvent(EventFinished, runID))
			return
		}
	}
}
