// Package app implements pydidas's BaseApp: a parameterised, clonable unit
// of work exposing a fixed multiprocessing lifecycle that WorkerController
// and AppRunner drive.
package app

import (
	"github.com/pydidas/pydidas-go/internal/param"
)

// App is the multiprocessing lifecycle contract every app implements.
// MultiprocessingGetTasks returns the full, finite task sequence (an empty
// slice marks a "tasks-less" app, which decides its own task stream from
// MultiprocessingFunc); MultiprocessingCarryOn gates whether the worker
// should fetch and run the next task yet; MultiprocessingStoreResults runs
// on the controller's main side only, never inside a worker process.
type App interface {
	Params() *param.Collection

	MultiprocessingPreRun() error
	MultiprocessingGetTasks() ([]any, error)
	MultiprocessingPreCycle(task any) error
	MultiprocessingCarryOn() bool
	MultiprocessingFunc(task any) (any, error)
	MultiprocessingStoreResults(task any, result any) error
	MultiprocessingPostRun() error

	// Copy returns a deep copy. When cloneMode is true, every reference
	// unsafe to share across a process boundary (open file handles,
	// connections, the original's ParameterCollection backing store) is
	// cleared or replaced with an independent instance, making the result
	// safe to reconstruct inside a worker process.
	Copy(cloneMode bool) App
}

// Base is embedded by concrete apps to provide the ParameterCollection and
// config map boilerplate; concrete apps override the lifecycle methods.
type Base struct {
	params *param.Collection
	config map[string]any
}

// NewBase constructs the embeddable Base, taking ownership of params.
func NewBase(params *param.Collection) Base {
	return Base{params: params, config: make(map[string]any)}
}

// Params exposes the underlying Collection for direct get/set access.
func (b *Base) Params() *param.Collection { return b.params }

// Config returns the app's mutable config map (e.g. run_prepared,
// task source state). Concrete apps read and write through this.
func (b *Base) Config() map[string]any { return b.config }

// CloneBase returns an independent Base copy; clone_mode controls nothing
// at this level (the params/config maps are always copied), since only a
// concrete app knows which of its own fields hold unsafe-to-share
// references.
func (b *Base) CloneBase() Base {
	cfg := make(map[string]any, len(b.config))
	for k, v := range b.config {
		cfg[k] = v
	}
	return Base{params: b.params.Copy(), config: cfg}
}
