package worker

import (
	"github.com/pydidas/pydidas-go/internal/app"
	"github.com/pydidas/pydidas-go/internal/pdlog"
)

// AppRunner is a Controller specialisation for App-driven runs: it owns
// the app.MultiprocessingPreRun/PostRun bracket, wires sig_results to
// app.MultiprocessingStoreResults, and stops the run early once progress
// reaches 1 (all tasks accounted for).
type AppRunner struct {
	controller *Controller
	theApp     app.App
	serialized app.Serializable

	doneCh chan struct{}
}

// NewAppRunner builds an AppRunner over a Serializable app (the concrete
// app type workers can reconstruct from its wire form) and a Controller
// sized for the desired worker count.
func NewAppRunner(controller *Controller, a app.Serializable) *AppRunner {
	return &AppRunner{controller: controller, theApp: a, serialized: a, doneCh: make(chan struct{})}
}

// Controller returns the underlying Controller.
func (r *AppRunner) Controller() *Controller { return r.controller }

// CyclePreRun calls the app's MultiprocessingPreRun, starts the worker
// pool with the serialized app, pushes every task MultiprocessingGetTasks
// returns, and finalizes the task queue unless the app is tasks-less (an
// empty task list, which signals the app drives its own task stream
// through MultiprocessingFunc instead).
func (r *AppRunner) CyclePreRun() error {
	if err := r.theApp.MultiprocessingPreRun(); err != nil {
		return err
	}
	if err := r.controller.Start(r.serialized); err != nil {
		return err
	}
	tasks, err := r.theApp.MultiprocessingGetTasks()
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		r.controller.AddTasks(tasks)
		r.controller.FinalizeTasks()
	}

	go r.pumpResults()
	go r.checkProgress()
	return nil
}

// pumpResults forwards every sig_results event to the app's
// MultiprocessingStoreResults, which runs exclusively on this, the
// controller's main-side goroutine — never inside a worker process.
func (r *AppRunner) pumpResults() {
	log := pdlog.For("apprunner")
	bus := r.controller.Bus()
	for {
		select {
		case ev, ok := <-bus.Results:
			if !ok {
				return
			}
			if err := r.theApp.MultiprocessingStoreResults(ev.Task, ev.Result); err != nil {
				log.Warn().Err(err).Msg("storing results failed")
			}
		case <-bus.Finished:
			return
		}
	}
}

// checkProgress is the original's __check_progress slot: once progress
// reaches 1, it sends the stop signal and suspends the controller.
func (r *AppRunner) checkProgress() {
	bus := r.controller.Bus()
	for p := range bus.Progress {
		if p >= 1 {
			r.controller.SendStopSignal()
			_ = r.controller.Suspend()
			return
		}
	}
}

// CyclePostRun calls the app's MultiprocessingPostRun and emits the final
// app state (a non-clone-mode copy, safe for the caller to inspect) onto
// sig_final_app_state.
func (r *AppRunner) CyclePostRun() (app.App, error) {
	if err := r.theApp.MultiprocessingPostRun(); err != nil {
		return nil, err
	}
	final := r.theApp.Copy(false)
	select {
	case r.controller.Bus().FinalAppState <- final:
	default:
	}
	return final, nil
}
