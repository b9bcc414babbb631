package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/telemetry"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

// WorkflowApp is the concrete App that drives one pydidas run: it walks
// every scan frame index and executes the WorkflowTree for it. The
// controller freezes (deep-clones) the Scan context and the Tree into one
// WorkflowApp before the run begins; each worker then reconstructs its own
// WorkflowApp from the serialized (class, params, config) tuple, per C7's
// "no shared mutable objects across processes" invariant.
type WorkflowApp struct {
	Base

	scan *scancontext.Context
	tree *workflow.Tree

	// StoreResults is invoked by MultiprocessingStoreResults on the
	// controller's main side only; it is nil inside a worker process,
	// where results are instead shipped back over the output queue.
	StoreResults func(task any, result map[int]*dataset.Dataset) error
}

// NewWorkflowApp builds a WorkflowApp over a frozen scan context and tree.
func NewWorkflowApp(scan *scancontext.Context, tree *workflow.Tree) *WorkflowApp {
	return &WorkflowApp{Base: NewBase(param.NewCollection()), scan: scan, tree: tree}
}

// Scan returns the app's frozen Scan context.
func (a *WorkflowApp) Scan() *scancontext.Context { return a.scan }

// Tree returns the app's frozen WorkflowTree.
func (a *WorkflowApp) Tree() *workflow.Tree { return a.tree }

func (a *WorkflowApp) MultiprocessingPreRun() error {
	a.Config()["run_prepared"] = true
	return a.tree.PropagateShapesAndGlobalConfig()
}

// MultiprocessingGetTasks returns every frame index the scan requires,
// 0..NFramesRequired-1.
func (a *WorkflowApp) MultiprocessingGetTasks() ([]any, error) {
	n := a.scan.NFramesRequired()
	tasks := make([]any, n)
	for i := 0; i < n; i++ {
		tasks[i] = i
	}
	return tasks, nil
}

func (a *WorkflowApp) MultiprocessingPreCycle(task any) error { return nil }

// MultiprocessingCarryOn always permits the next cycle; a run over a
// static scan and tree has no external gating condition.
func (a *WorkflowApp) MultiprocessingCarryOn() bool { return true }

// MultiprocessingFunc executes the tree once for the given frame index.
func (a *WorkflowApp) MultiprocessingFunc(task any) (any, error) {
	frameIndex, ok := task.(int)
	if !ok {
		return nil, fmt.Errorf("workflow app expects an int frame index, got %T", task)
	}
	_, span := telemetry.StartSpan(context.Background(), "workflow.execute_process",
		attribute.Int("frame_index", frameIndex))
	result, err := a.tree.ExecuteProcess(frameIndex, false)
	telemetry.EndWithError(span, err)
	return result, err
}

// MultiprocessingStoreResults delegates to StoreResults, which the
// controller wires to the WorkflowResults store. Never called inside a
// worker process.
func (a *WorkflowApp) MultiprocessingStoreResults(task any, result any) error {
	if a.StoreResults == nil {
		return nil
	}
	datasets, ok := result.(map[int]*dataset.Dataset)
	if !ok {
		return fmt.Errorf("workflow app expects a map[int]*dataset.Dataset result, got %T", result)
	}
	return a.StoreResults(task, datasets)
}

func (a *WorkflowApp) MultiprocessingPostRun() error { return nil }

// Copy returns an independent WorkflowApp. In clone_mode the StoreResults
// callback is cleared, since it closes over the controller's main-side
// WorkflowResults store and is never safe to invoke from a worker process.
func (a *WorkflowApp) Copy(cloneMode bool) App {
	cp := &WorkflowApp{
		Base: a.CloneBase(),
		scan: a.scan.Clone(),
		tree: a.tree.Clone(),
	}
	if !cloneMode {
		cp.StoreResults = a.StoreResults
	}
	return cp
}
