package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsShapeMismatch(t *testing.T) {
	_, err := New([]int{2, 2}, []float64{1, 2, 3})
	assert.Error(t, err)
}

func TestAtRowMajorOrdering(t *testing.T) {
	// shape [2,3]: dim0 slowest, dim1 fastest.
	d, err := New([]int{2, 3}, []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	v, err := d.At(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = d.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestAtOutOfBounds(t *testing.T) {
	d := Zeros([]int{2, 2})
	_, err := d.At(5, 0)
	assert.Error(t, err)
}

func TestSetAxisRangeLengthMismatch(t *testing.T) {
	d := Zeros([]int{3, 4})
	err := d.SetAxisRange(0, []float64{1, 2})
	assert.Error(t, err)
}

func TestSliceRemovesAndRenumbersAxes(t *testing.T) {
	d, err := New([]int{2, 3, 4}, make([]float64, 24))
	require.NoError(t, err)
	d.SetAxisLabel(0, "scan")
	d.SetAxisLabel(1, "detector_y")
	d.SetAxisLabel(2, "detector_x")
	require.NoError(t, d.SetAxisRange(2, []float64{10, 20, 30, 40}))

	for i := range d.Raw() {
		d.Raw()[i] = float64(i)
	}

	sub, err := d.Slice(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, sub.Shape())
	assert.Equal(t, "detector_y", sub.AxisLabel(0))
	assert.Equal(t, "detector_x", sub.AxisLabel(1))
	assert.Equal(t, []float64{10, 20, 30, 40}, sub.AxisRange(1))

	v, err := sub.At(2, 3)
	require.NoError(t, err)
	orig, err := d.At(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, orig, v)
}

func TestSqueezeDropsSizeOneAxes(t *testing.T) {
	d := Zeros([]int{1, 5, 1})
	sq := d.Squeeze()
	assert.Equal(t, []int{5}, sq.Shape())
}

func TestMsgpackRoundTrip(t *testing.T) {
	d, err := New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	d.SetAxisLabel(0, "q")
	d.SetMetadata("exposure_time", 0.5)

	b, err := d.EncodeMsgpack()
	require.NoError(t, err)

	back, err := DecodeMsgpack(b)
	require.NoError(t, err)
	assert.Equal(t, d.Shape(), back.Shape())
	assert.Equal(t, d.Raw(), back.Raw())
	assert.Equal(t, "q", back.AxisLabel(0))
	v, ok := back.Metadata("exposure_time")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestCopyIsIndependent(t *testing.T) {
	d := Zeros([]int{2})
	cp := d.Copy()
	cp.Raw()[0] = 99
	assert.Equal(t, 0.0, d.Raw()[0])
}
