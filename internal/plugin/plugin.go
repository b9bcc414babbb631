// Package plugin implements pydidas's Plugin contract and PluginCollection
// registry: the typed transformation unit a WorkflowTree node wraps, and
// the process-wide registry of plugin constructors populated by discovery.
package plugin

import (
	"fmt"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// Type names where in the tree a plugin may sit.
type Type int

const (
	Input Type = iota
	Proc
	Output
)

func (t Type) String() string {
	switch t {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "proc"
	}
}

// Plugin is the contract every tree node wraps. Tree.ExecuteProcess calls
// PreExecute right before the node's Execute on every call, so once per
// task rather than once per worker; Execute is called once
// per task and threads kw from node to node; CalculateResultShape declares
// the output shape given the plugin's current parameters and, for
// non-input plugins, the injected input shape.
type Plugin interface {
	Name() string
	Type() Type
	Params() *param.Collection
	InputDataDim() int
	OutputDataDim() int

	PreExecute() error
	Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error)
	CalculateResultShape() ([]int, error)

	// SetInputShape injects the parent node's result_shape before
	// CalculateResultShape is invoked; called by WorkflowTree shape
	// propagation for every node except the root.
	SetInputShape(shape []int)

	// GetFilename returns the source filename for the given scan-point
	// index; only meaningful for Type() == Input.
	GetFilename(index int) (string, error)

	// Clone returns a deep copy with independently-mutable parameters,
	// used when a worker process clones the tree for its own execution.
	Clone() Plugin
}

// Base is embedded by concrete plugins to provide the boilerplate: name,
// type, dims, a parameter collection, and the config map CalculateResultShape
// reads input_shape from. Concrete plugins override Execute, PreExecute,
// and CalculateResultShape; they inherit SetInputShape, GetFilename's
// default "not an input plugin" error, and the Clone scaffolding via
// CloneBase.
type Base struct {
	name          string
	kind          Type
	params        *param.Collection
	inputDataDim  int
	outputDataDim int
	config        map[string]any
}

// NewBase constructs the embeddable Base. defaultParams is owned by the
// returned Base (not copied); pass a freshly-built Collection per
// instance.
func NewBase(name string, kind Type, defaultParams *param.Collection, inputDataDim, outputDataDim int) Base {
	return Base{
		name:          name,
		kind:          kind,
		params:        defaultParams,
		inputDataDim:  inputDataDim,
		outputDataDim: outputDataDim,
		config:        make(map[string]any),
	}
}

func (b *Base) Name() string               { return b.name }
func (b *Base) Type() Type                  { return b.kind }
func (b *Base) Params() *param.Collection   { return b.params }
func (b *Base) InputDataDim() int           { return b.inputDataDim }
func (b *Base) OutputDataDim() int          { return b.outputDataDim }

// SetInputShape stores shape under the "input_shape" config key that
// CalculateResultShape implementations read.
func (b *Base) SetInputShape(shape []int) { b.config["input_shape"] = shape }

// InputShape returns the shape last injected by SetInputShape, or nil if
// none was set (true for a tree root, which shape propagation never
// injects into, and for any node before the first propagation pass).
func (b *Base) InputShape() []int {
	if s, ok := b.config["input_shape"].([]int); ok {
		return s
	}
	return nil
}

// GetFilename's default implementation; input plugins override it.
func (b *Base) GetFilename(index int) (string, error) {
	return "", pderrors.NewFrameConfigError(fmt.Sprintf("plugin %q is not an input plugin", b.name))
}

// CloneBase returns an independent copy of b for embedding in a concrete
// plugin's Clone method.
func (b *Base) CloneBase() Base {
	cfg := make(map[string]any, len(b.config))
	for k, v := range b.config {
		cfg[k] = v
	}
	return Base{
		name:          b.name,
		kind:          b.kind,
		params:        b.params.Copy(),
		inputDataDim:  b.inputDataDim,
		outputDataDim: b.outputDataDim,
		config:        cfg,
	}
}
