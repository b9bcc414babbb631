package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
)

// identityPlugin is a minimal Proc plugin used only by tests: it passes
// its input shape straight through.
type identityPlugin struct {
	Base
}

func newIdentityPlugin() Plugin {
	p := &identityPlugin{Base: NewBase("Identity", Proc, param.NewCollection(), 2, 2)}
	return p
}

func (p *identityPlugin) PreExecute() error { return nil }

func (p *identityPlugin) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	return dataset.Zeros(p.InputShape()), kw, nil
}

func (p *identityPlugin) CalculateResultShape() ([]int, error) {
	return p.InputShape(), nil
}

func (p *identityPlugin) Clone() Plugin {
	return &identityPlugin{Base: p.CloneBase()}
}

func TestBaseInputShapeInjection(t *testing.T) {
	p := newIdentityPlugin()
	p.SetInputShape([]int{127, 324})
	shape, err := p.CalculateResultShape()
	require.NoError(t, err)
	assert.Equal(t, []int{127, 324}, shape)
}

func TestGetFilenameDefaultsToError(t *testing.T) {
	p := newIdentityPlugin()
	_, err := p.GetFilename(0)
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	base := NewBase("Identity", Proc, param.NewCollection(param.MustNew("x", "X", param.Integral, 1)), 2, 2)
	p := &identityPlugin{Base: base}
	cp := p.Clone().(*identityPlugin)
	require.NoError(t, cp.Params().SetValue("x", 9))
	assert.Equal(t, 1, p.Params().Value("x"))
	assert.Equal(t, 9, cp.Params().Value("x"))
}

func TestRegistryRejectsDuplicateUnlessOverride(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Register("Identity", newIdentityPlugin, false))
	err := c.Register("Identity", newIdentityPlugin, false)
	assert.Error(t, err)
	require.NoError(t, c.Register("Identity", newIdentityPlugin, true))
}

func TestCollectionNewConstructsFreshInstances(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Register("Identity", newIdentityPlugin, false))
	p1, err := c.New("Identity")
	require.NoError(t, err)
	p2, err := c.New("Identity")
	require.NoError(t, err)
	assert.NotSame(t, p1, p2)
}

func TestShapeExprEvaluation(t *testing.T) {
	shape, err := EvaluateShapeExpr("[input_shape[0], 16]", []int{127, 324}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{127, 16}, shape)
}
