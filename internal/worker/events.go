package worker

import "github.com/pydidas/pydidas-go/internal/dataset"

// ResultEvent is the (task, result) pair the controller's sig_results
// channel carries back to the main side once a worker completes a task.
type ResultEvent struct {
	Task   any
	Result map[int]*dataset.Dataset
}

// EventBus is the controller's four-channel signal bus: sig_progress,
// sig_results, sig_finished, and sig_final_app_state in the original's
// naming. The controller writes Progress, Results and Finished;
// AppRunner.CyclePostRun writes FinalAppState. Callers (an AppRunner, a
// REST handler, a WebSocket broadcaster) are readers.
type EventBus struct {
	Progress      chan float64
	Results       chan ResultEvent
	Finished      chan struct{}
	FinalAppState chan any
}

func newEventBus() *EventBus {
	return &EventBus{
		Progress:      make(chan float64, 64),
		Results:       make(chan ResultEvent, 64),
		Finished:      make(chan struct{}, 1),
		FinalAppState: make(chan any, 1),
	}
}
