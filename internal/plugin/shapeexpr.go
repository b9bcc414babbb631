package plugin

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// EvaluateShapeExpr evaluates an output_shape_expr parameter against the
// plugin's current input_shape, letting a plugin declare its output shape
// declaratively (e.g. "input_shape[0:1]" to keep only the leading axis, or
// "[input_shape[0], n_bins]" for a reduction) instead of a Go method body.
// This reuses the conditional-edge expression engine for the shape-algebra
// role SPEC_FULL assigns it; a plugin with no output_shape_expr parameter
// simply never calls this helper.
func EvaluateShapeExpr(source string, inputShape []int, extra map[string]any) ([]int, error) {
	env := map[string]any{"input_shape": inputShape}
	for k, v := range extra {
		env[k] = v
	}
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, pderrors.NewSchemaError("output_shape_expr", fmt.Sprintf("compile failed: %v", err))
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, pderrors.NewSchemaError("output_shape_expr", fmt.Sprintf("evaluation failed: %v", err))
	}
	return toIntShape(out)
}

func toIntShape(v any) ([]int, error) {
	switch vv := v.(type) {
	case []int:
		return vv, nil
	case []any:
		out := make([]int, len(vv))
		for i, e := range vv {
			n, ok := toInt(e)
			if !ok {
				return nil, pderrors.NewSchemaError("output_shape_expr", fmt.Sprintf("element %d is not an integer: %v", i, e))
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, pderrors.NewSchemaError("output_shape_expr", fmt.Sprintf("expression did not evaluate to a shape: %v", v))
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
