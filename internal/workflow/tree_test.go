package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/plugin"
)

// fixedShapePlugin always declares a hard-coded output shape, ignoring its
// input shape. identityShapePlugin passes input_shape through unchanged.

type fixedShapePlugin struct {
	plugin.Base
	shape []int
}

func newFixedShapePlugin(name string, shape []int) plugin.Plugin {
	return &fixedShapePlugin{Base: plugin.NewBase(name, plugin.Proc, param.NewCollection(), 2, len(shape)), shape: shape}
}

func (p *fixedShapePlugin) PreExecute() error { return nil }
func (p *fixedShapePlugin) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	return dataset.Zeros(p.shape), kw, nil
}
func (p *fixedShapePlugin) CalculateResultShape() ([]int, error) { return p.shape, nil }
func (p *fixedShapePlugin) Clone() plugin.Plugin {
	return &fixedShapePlugin{Base: p.CloneBase(), shape: p.shape}
}

type identityShapePlugin struct {
	plugin.Base
}

func newIdentityShapePlugin(name string) plugin.Plugin {
	return &identityShapePlugin{Base: plugin.NewBase(name, plugin.Proc, param.NewCollection(), 2, 2)}
}

func (p *identityShapePlugin) PreExecute() error { return nil }
func (p *identityShapePlugin) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	return dataset.Zeros(p.InputShape()), kw, nil
}
func (p *identityShapePlugin) CalculateResultShape() ([]int, error) { return p.InputShape(), nil }
func (p *identityShapePlugin) Clone() plugin.Plugin {
	return &identityShapePlugin{Base: p.CloneBase()}
}

func TestTreeShapePropagation(t *testing.T) {
	tree := New()
	root, err := tree.CreateAndAddNode(newFixedShapePlugin("root", []int{127, 324}), nil, false)
	require.NoError(t, err)
	child1, err := tree.CreateAndAddNode(newIdentityShapePlugin("child1"), root, false)
	require.NoError(t, err)
	_, err = tree.CreateAndAddNode(newFixedShapePlugin("child2", []int{12, 3, 5}), root, false)
	require.NoError(t, err)

	require.NoError(t, tree.PropagateShapesAndGlobalConfig())

	shapes := tree.GetAllResultShapes()
	assert.Equal(t, []int{127, 324}, shapes[root.ID()])
	assert.Equal(t, []int{127, 324}, shapes[child1.ID()])
	assert.Equal(t, []int{12, 3, 5}, shapes[2])
}

func TestTreeRejectsSecondRootWithoutReplace(t *testing.T) {
	tree := New()
	_, err := tree.CreateAndAddNode(newFixedShapePlugin("root", []int{1}), nil, false)
	require.NoError(t, err)
	_, err = tree.CreateAndAddNode(newFixedShapePlugin("root2", []int{1}), nil, false)
	assert.Error(t, err)
}

func TestExecuteProcessPrunesIntermediateResults(t *testing.T) {
	tree := New()
	root, err := tree.CreateAndAddNode(newFixedShapePlugin("root", []int{4}), nil, false)
	require.NoError(t, err)
	mid, err := tree.CreateAndAddNode(newIdentityShapePlugin("mid"), root, false)
	require.NoError(t, err)
	leaf, err := tree.CreateAndAddNode(newIdentityShapePlugin("leaf"), mid, false)
	require.NoError(t, err)
	require.NoError(t, tree.PropagateShapesAndGlobalConfig())

	out, err := tree.ExecuteProcess(0, false)
	require.NoError(t, err)

	assert.Nil(t, root.Results())
	assert.Nil(t, mid.Results())
	assert.NotNil(t, leaf.Results())
	assert.Contains(t, out, leaf.ID())
	assert.NotContains(t, out, root.ID())
}

func TestExecuteProcessForceStoreResultsKeepsEverything(t *testing.T) {
	tree := New()
	root, err := tree.CreateAndAddNode(newFixedShapePlugin("root", []int{4}), nil, false)
	require.NoError(t, err)
	_, err = tree.CreateAndAddNode(newIdentityShapePlugin("leaf"), root, false)
	require.NoError(t, err)
	require.NoError(t, tree.PropagateShapesAndGlobalConfig())

	out, err := tree.ExecuteProcess(0, true)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestHashDiffersBetweenDifferentTrees(t *testing.T) {
	tree := New()
	p := newFixedShapePlugin("root", []int{4})
	_, err := tree.CreateAndAddNode(p, nil, false)
	require.NoError(t, err)

	h1, err := tree.Hash()
	require.NoError(t, err)

	collWithParam := param.NewCollection(param.MustNew("threshold", "Threshold", param.Real, 1.0))
	p2 := &fixedShapePlugin{Base: plugin.NewBase("root2", plugin.Proc, collWithParam, 2, 1), shape: []int{4}}
	tree2 := New()
	_, err = tree2.CreateAndAddNode(p2, nil, false)
	require.NoError(t, err)
	h2, err := tree2.Hash()
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestExportImportRoundTrip(t *testing.T) {
	collection := plugin.NewCollection()
	require.NoError(t, collection.Register("root", func() plugin.Plugin { return newFixedShapePlugin("root", []int{4}) }, false))
	require.NoError(t, collection.Register("leaf", func() plugin.Plugin { return newIdentityShapePlugin("leaf") }, false))

	tree := New()
	root, err := tree.CreateAndAddNode(mustNewFromCollection(t, collection, "root"), nil, false)
	require.NoError(t, err)
	_, err = tree.CreateAndAddNode(mustNewFromCollection(t, collection, "leaf"), root, false)
	require.NoError(t, err)

	text, err := tree.ExportToString()
	require.NoError(t, err)

	imported, err := ImportFromString(text, collection)
	require.NoError(t, err)
	assert.Equal(t, tree.Len(), imported.Len())
	assert.Equal(t, "root", imported.Root().Plugin().Name())
}

func mustNewFromCollection(t *testing.T, c *plugin.Collection, name string) plugin.Plugin {
	t.Helper()
	p, err := c.New(name)
	require.NoError(t, err)
	return p
}
