package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pydidas/pydidas-go/internal/app"
	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/results"
	"github.com/pydidas/pydidas-go/internal/restapi"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/telemetry"
	"github.com/pydidas/pydidas-go/internal/workflow"
	"github.com/pydidas/pydidas-go/internal/worker"
	"github.com/pydidas/pydidas-go/internal/wsprogress"
)

const progressPollInterval = 100 * time.Millisecond

// run tracks one in-flight or finished WorkflowApp execution.
type run struct {
	id         string
	controller *worker.Controller
	runner     *worker.AppRunner
	store      *results.Store
	err        error
	state      string // "running", "finished", "stopped", "error"
}

// runManager implements restapi.Runner over a fixed scan+tree pair,
// starting a fresh WorkflowApp clone (and its own worker pool) per run so
// that concurrent runs never share a tree or scan context.
type runManager struct {
	mu         sync.Mutex
	runs       map[string]*run
	scan       *scancontext.Context
	tree       *workflow.Tree
	numWorkers int
	reExecArgs []string
	hub        *wsprogress.Hub
	log        zerolog.Logger
}

func newRunManager(scan *scancontext.Context, tree *workflow.Tree, numWorkers int, reExecArgs []string, hub *wsprogress.Hub, log zerolog.Logger) *runManager {
	return &runManager{
		runs:       make(map[string]*run),
		scan:       scan,
		tree:       tree,
		numWorkers: numWorkers,
		reExecArgs: reExecArgs,
		hub:        hub,
		log:        log,
	}
}

var _ restapi.Runner = (*runManager)(nil)

func (m *runManager) StartRun() (string, error) {
	store, err := results.New(m.scan.Clone(), m.tree.Clone())
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	r := &run{id: id, store: store, state: "running"}

	wfApp := app.NewWorkflowApp(m.scan.Clone(), m.tree.Clone())
	wfApp.StoreResults = func(task any, result map[int]*dataset.Dataset) error {
		frameIndex, _ := task.(int)
		if err := store.StoreResults(frameIndex, result); err != nil {
			return err
		}
		for nodeID := range result {
			m.hub.Broadcast(id, &wsprogress.Event{Type: wsprogress.EventResult, RunID: id, NodeID: nodeID})
		}
		return nil
	}

	reExecArgs := m.reExecArgs
	controller := worker.New(m.numWorkers, reExecArgs)
	runner := worker.NewAppRunner(controller, wfApp)

	r.controller = controller
	r.runner = runner

	m.mu.Lock()
	m.runs[id] = r
	m.mu.Unlock()

	go m.drive(r)

	return id, nil
}

func (m *runManager) drive(r *run) {
	_, span := telemetry.StartSpan(context.Background(), "run.drive")
	defer telemetry.EndWithError(span, nil)

	if err := r.runner.CyclePreRun(); err != nil {
		m.finish(r, "error", err)
		return
	}

	m.waitForCompletion(r)

	if _, err := r.runner.CyclePostRun(); err != nil {
		m.finish(r, "error", err)
		return
	}
	if err := r.controller.Stop(0); err != nil {
		m.log.Warn().Err(err).Str("run_id", r.id).Msg("controller stop reported an error")
	}
	m.finish(r, "finished", nil)
}

// waitForCompletion polls Controller.Progress, a plain method call, rather
// than reading bus.Finished or bus.Progress directly: AppRunner.pumpResults
// and checkProgress already hold the sole legitimate read of those two
// channels, and a second reader would race them for each delivery.
func (m *runManager) waitForCompletion(r *run) {
	last := -1.0
	for {
		p := r.controller.Progress()
		if p != last {
			m.hub.Broadcast(r.id, &wsprogress.Event{Type: wsprogress.EventProgress, RunID: r.id, Progress: p})
			last = p
		}
		if p >= 1 || r.controller.State() == worker.StateDead {
			return
		}
		time.Sleep(progressPollInterval)
	}
}

// finish records a terminal state, except it never overwrites a "stopped"
// state already recorded by StopRun: drive's own post-interruption cleanup
// would otherwise race StopRun's immediate status update and report the
// run as "finished" instead of "stopped".
func (m *runManager) finish(r *run, state string, err error) {
	m.mu.Lock()
	if r.state == "stopped" {
		m.mu.Unlock()
		return
	}
	r.state = state
	r.err = err
	m.mu.Unlock()
	m.hub.Broadcast(r.id, wsprogress.NewEvent(wsprogress.EventFinished, r.id))
}

func (m *runManager) RunStatus(id string) (restapi.RunStatus, error) {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return restapi.RunStatus{}, fmt.Errorf("unknown run %q", id)
	}
	status := restapi.RunStatus{ID: id, State: r.state, Progress: r.controller.Progress()}
	if r.err != nil {
		status.Error = r.err.Error()
	}
	return status, nil
}

func (m *runManager) StopRun(id string) error {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown run %q", id)
	}
	r.controller.RequestInterruption()
	m.finish(r, "stopped", nil)
	return nil
}

// storeFor returns the result store for a finished or in-flight run, for
// callers that want to read back composites after a run completes.
func (m *runManager) storeFor(id string) (*results.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, false
	}
	return r.store, true
}

func isWorkerMode(args []string) bool {
	for _, a := range args {
		if a == "--pydidas-worker" {
			return true
		}
	}
	return false
}

func exitIfErr(err error, log zerolog.Logger) {
	if err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}
