package scancontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configureScan(t *testing.T, c *Context, dims []int, deltas, offsets []float64) {
	t.Helper()
	require.NoError(t, c.Params().SetValue("scan_dim", len(dims)))
	for d, n := range dims {
		require.NoError(t, c.Params().SetValue(keyFor(d, "n_points"), n))
		require.NoError(t, c.Params().SetValue(keyFor(d, "delta"), deltas[d]))
		require.NoError(t, c.Params().SetValue(keyFor(d, "offset"), offsets[d]))
	}
}

func keyFor(d int, suffix string) string {
	return "scan_dim" + itoa(d) + "_" + suffix
}

func itoa(d int) string {
	return string(rune('0' + d))
}

func TestNPointsAndFramePositionBijection(t *testing.T) {
	c := New()
	configureScan(t, c, []int{5, 2, 3}, []float64{0.1, 1, 12}, []float64{-3, 0, 3.2})

	assert.Equal(t, 30, c.NPoints())

	pos, err := c.GetFramePositionInScan(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, pos)

	pos, err = c.GetFramePositionInScan(3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, pos)

	pos, err = c.GetFramePositionInScan(29)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 2}, pos)
}

func TestFramePositionOutOfRange(t *testing.T) {
	c := New()
	configureScan(t, c, []int{2, 2}, []float64{1, 1}, []float64{0, 0})
	_, err := c.GetFramePositionInScan(4)
	assert.Error(t, err)
	_, err = c.GetFramePositionInScan(-1)
	assert.Error(t, err)
}

func TestGetRangeForDim(t *testing.T) {
	c := New()
	configureScan(t, c, []int{5, 2, 3}, []float64{0.1, 1, 12}, []float64{-3, 0, 3.2})
	r, err := c.GetRangeForDim(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-3, -2.9, -2.8, -2.7, -2.6}, r, 1e-9)
}

func TestNFramesRequiredWithMultiFrame(t *testing.T) {
	c := New()
	configureScan(t, c, []int{3}, []float64{1}, []float64{0})
	require.NoError(t, c.Params().SetValue("frame_indices_per_scan_point", 2))
	require.NoError(t, c.Params().SetValue("scan_frames_per_point", 2))
	// points 0,1,2 at frame starts 0,2,4; last point consumes 2 frames -> frames 4,5.
	assert.Equal(t, 6, c.NFramesRequired())
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	configureScan(t, c, []int{5}, []float64{1}, []float64{0})
	clone := c.Clone()
	require.NoError(t, clone.Params().SetValue("scan_dim0_n_points", 9))
	assert.Equal(t, 5, c.NPoints())
	assert.Equal(t, 9, clone.NPoints())
}
