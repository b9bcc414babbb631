// Package pydidas is the public facade over the internal packages: it
// re-exports the types a caller assembling a workflow run actually needs
// (parameters, datasets, contexts, plugins, the tree, the app, and the
// worker controller) as aliases, so callers outside this module import one
// package rather than reaching into internal/.
package pydidas

import (
	"github.com/pydidas/pydidas-go/internal/app"
	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/expcontext"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/plugin"
	"github.com/pydidas/pydidas-go/internal/results"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/worker"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

// Parameters.
type (
	Parameter       = param.Parameter
	ParameterKind   = param.Kind
	ParameterOption = param.Option
	Collection      = param.Collection
)

// Datasets.
type Dataset = dataset.Dataset

// Contexts.
type (
	ScanContext           = scancontext.Context
	DiffractionExpContext = expcontext.Context
	MultiFrameHandling    = scancontext.MultiFrameHandling
)

// Plugins.
type (
	Plugin     = plugin.Plugin
	PluginType = plugin.Type
	PluginBase = plugin.Base
)

// Workflow tree.
type (
	WorkflowTree = workflow.Tree
	WorkflowNode = workflow.Node
)

// Apps and workers.
type (
	App           = app.App
	Serializable  = app.Serializable
	WorkflowApp   = app.WorkflowApp
	Controller    = worker.Controller
	AppRunner     = worker.AppRunner
	ControllerBus = worker.EventBus
)

// Results.
type (
	WorkflowResults = results.Store
	ResultSink      = results.Sink
	ResultMetadata  = results.ResultMetadata
)

// NewParameterCollection builds a Collection from params, panicking on
// duplicate keys exactly as param.NewCollection does — only pass
// statically-known, distinct refKeys.
func NewParameterCollection(params ...*Parameter) *Collection {
	return param.NewCollection(params...)
}

// NewScanContext builds a fresh ScanContext with pydidas's fixed
// scan_dim0..3 and multi-frame parameter set.
func NewScanContext() *ScanContext { return scancontext.New() }

// NewDiffractionExpContext builds a fresh DiffractionExpContext with the
// PONI/detector-geometry parameter set.
func NewDiffractionExpContext() *DiffractionExpContext { return expcontext.New() }

// NewWorkflowTree builds an empty WorkflowTree.
func NewWorkflowTree() *WorkflowTree { return workflow.New() }

// NewWorkflowApp builds a WorkflowApp over a frozen scan context and tree.
func NewWorkflowApp(scan *ScanContext, tree *WorkflowTree) *WorkflowApp {
	return app.NewWorkflowApp(scan, tree)
}

// NewController builds a Controller that spawns numWorkers OS-process
// workers re-exec'd via reExecArgs (typically []string{os.Args[0],
// "--pydidas-worker"}).
func NewController(numWorkers int, reExecArgs []string) *Controller {
	return worker.New(numWorkers, reExecArgs)
}

// NewAppRunner builds an AppRunner driving a over controller.
func NewAppRunner(controller *Controller, a Serializable) *AppRunner {
	return worker.NewAppRunner(controller, a)
}

// NewWorkflowResults builds a results Store for a frozen scan+tree pair.
func NewWorkflowResults(scan *ScanContext, tree *WorkflowTree) (*WorkflowResults, error) {
	return results.New(scan, tree)
}

// PluginRegistry returns the process-wide plugin registry.
func PluginRegistry() *plugin.Collection { return plugin.Global() }

// ResultSinkRegistry returns the process-wide result-sink registry.
func ResultSinkRegistry() *results.Registry { return results.Global() }
