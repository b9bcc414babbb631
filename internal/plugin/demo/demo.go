// Package demo provides two registered, no-science plugins — a frame
// source and a generic shape-transform — so a WorkflowTree can be built
// and run end to end without any concrete diffraction-processing plugin,
// which SPEC_FULL's Non-goals leave unimplemented. cmd/pydidasd uses these
// to exercise the full contexts -> tree -> app -> controller -> results
// pipeline.
package demo

import (
	"slices"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/plugin"
)

// FrameLoader is a Type()==Input plugin that returns a zero-filled frame
// of a configurable shape instead of reading a real detector file.
type FrameLoader struct {
	plugin.Base
}

// NewFrameLoader builds a FrameLoader producing frames of shape
// (nRows, nCols).
func NewFrameLoader(nRows, nCols int) plugin.Plugin {
	params := param.NewCollection(
		param.MustNew("n_rows", "Number of rows", param.Integral, nRows),
		param.MustNew("n_cols", "Number of columns", param.Integral, nCols),
	)
	return &FrameLoader{Base: plugin.NewBase("demo.frame_loader", plugin.Input, params, 0, 2)}
}

func (p *FrameLoader) PreExecute() error { return nil }

func (p *FrameLoader) GetFilename(index int) (string, error) { return "", nil }

func (p *FrameLoader) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	shape := []int{p.Params().Value("n_rows").(int), p.Params().Value("n_cols").(int)}
	return dataset.Zeros(shape), kw, nil
}

func (p *FrameLoader) CalculateResultShape() ([]int, error) {
	return []int{p.Params().Value("n_rows").(int), p.Params().Value("n_cols").(int)}, nil
}

func (p *FrameLoader) Clone() plugin.Plugin {
	return &FrameLoader{Base: p.CloneBase()}
}

// Transform is a Type()==Proc plugin whose result shape is its input shape,
// or the shape an output_shape_expr parameter (see plugin.EvaluateShapeExpr)
// evaluates to when one is set. Execute passes the input Dataset through
// unchanged when its shape equals that result shape; otherwise it returns a
// zero-filled Dataset of the result shape (the input values are not
// carried over).
type Transform struct {
	plugin.Base
}

// NewTransform builds a Transform plugin. shapeExpr may be empty, in which
// case the plugin is a pure pass-through.
func NewTransform(shapeExpr string) plugin.Plugin {
	params := param.NewCollection(
		param.MustNew("output_shape_expr", "Output shape expression", param.Text, shapeExpr, param.WithOptional()),
	)
	return &Transform{Base: plugin.NewBase("demo.transform", plugin.Proc, params, 2, 2)}
}

func (p *Transform) PreExecute() error { return nil }

func (p *Transform) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	in, ok := task.(*dataset.Dataset)
	if !ok {
		return dataset.Zeros(p.InputShape()), kw, nil
	}
	shape, err := p.CalculateResultShape()
	if err != nil {
		return nil, nil, err
	}
	if slices.Equal(shape, in.Shape()) {
		return in, kw, nil
	}
	return dataset.Zeros(shape), kw, nil
}

func (p *Transform) CalculateResultShape() ([]int, error) {
	expr, _ := p.Params().Value("output_shape_expr").(string)
	if expr == "" {
		return p.InputShape(), nil
	}
	return plugin.EvaluateShapeExpr(expr, p.InputShape(), nil)
}

func (p *Transform) Clone() plugin.Plugin {
	return &Transform{Base: p.CloneBase()}
}

func init() {
	_ = plugin.Global().Register("demo.frame_loader", func() plugin.Plugin { return NewFrameLoader(16, 16) }, false)
	_ = plugin.Global().Register("demo.transform", func() plugin.Plugin { return NewTransform("") }, false)
}
