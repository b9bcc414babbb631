package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/plugin/demo"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

// buildScanAndTree wires a (5,2,3) scan over a two-result-node tree: the
// root (kept, not a leaf) produces a (12,27) frame and its child reshapes
// that into a (3,3,5) result.
func buildScanAndTree(t *testing.T) (*scancontext.Context, *workflow.Tree) {
	t.Helper()

	scan := scancontext.New()
	require.NoError(t, scan.Params().SetValue("scan_dim", 3))
	require.NoError(t, scan.Params().SetValue("scan_dim0_n_points", 5))
	require.NoError(t, scan.Params().SetValue("scan_dim1_n_points", 2))
	require.NoError(t, scan.Params().SetValue("scan_dim2_n_points", 3))

	tree := workflow.New()
	root, err := tree.CreateAndAddNode(demo.NewFrameLoader(12, 27), nil, false)
	require.NoError(t, err)
	root.KeepResults = true
	_, err = tree.CreateAndAddNode(demo.NewTransform("[3,3,5]"), root, false)
	require.NoError(t, err)

	require.NoError(t, tree.PropagateShapesAndGlobalConfig())
	return scan, tree
}

func TestStoreComposesShapesAcrossTheFullScan(t *testing.T) {
	scan, tree := buildScanAndTree(t)
	store, err := New(scan, tree)
	require.NoError(t, err)

	root := tree.Root()
	child := root.Children()[0]

	nFrames := scan.NFramesRequired()
	require.Equal(t, 30, nFrames)

	for frame := 0; frame < nFrames; frame++ {
		result, err := tree.ExecuteProcess(frame, false)
		require.NoError(t, err)
		require.NoError(t, store.StoreResults(frame, result))
	}

	shapes := store.Shapes()
	assert.Equal(t, []int{5, 2, 3, 12, 27}, shapes[root.ID()])
	assert.Equal(t, []int{5, 2, 3, 3, 3, 5}, shapes[child.ID()])
}

func TestStoreCompositeAxisMetadataCarriesScanLabels(t *testing.T) {
	scan, tree := buildScanAndTree(t)
	store, err := New(scan, tree)
	require.NoError(t, err)

	result, err := tree.ExecuteProcess(0, false)
	require.NoError(t, err)
	require.NoError(t, store.StoreResults(0, result))

	rootComposite, err := store.GetResults(tree.Root().ID())
	require.NoError(t, err)

	assert.Equal(t, "dim_0", rootComposite.AxisLabel(0))
	assert.Equal(t, "dim_1", rootComposite.AxisLabel(1))
	assert.Equal(t, "dim_2", rootComposite.AxisLabel(2))

	rng, err := scan.GetRangeForDim(0)
	require.NoError(t, err)
	assert.Equal(t, rng, rootComposite.AxisRange(0))
}

func TestStoreRejectsResultForUnknownNode(t *testing.T) {
	scan, tree := buildScanAndTree(t)
	store, err := New(scan, tree)
	require.NoError(t, err)

	bogus := dataset.Zeros([]int{12, 27})
	err = store.StoreResults(0, map[int]*dataset.Dataset{9999: bogus})
	assert.Error(t, err)
}
