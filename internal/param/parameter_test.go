package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsTypeMismatch(t *testing.T) {
	_, err := New("n_points", "Number of points", Integral, "not an int")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema error")
}

func TestNewRejectsNonOptionalNil(t *testing.T) {
	_, err := New("detector_mask_file", "Detector mask file", Path, nil)
	require.Error(t, err)
}

func TestNewAllowsOptionalNil(t *testing.T) {
	p, err := New("detector_mask_file", "Detector mask file", Path, nil, WithOptional())
	require.NoError(t, err)
	assert.Nil(t, p.Value())
}

func TestSetValueRejectsOutOfChoiceSet(t *testing.T) {
	p, err := New("scan_dim", "Scan dimension", Enum, "x", WithChoices("x", "y", "z"))
	require.NoError(t, err)

	require.NoError(t, p.SetValue("y"))
	assert.Equal(t, "y", p.Value())

	err = p.SetValue("q")
	assert.Error(t, err)
	assert.Equal(t, "y", p.Value(), "rejected SetValue must not mutate current value")
}

func TestRestoreDefault(t *testing.T) {
	p, err := New("energy", "Energy", Real, 12.4, WithUnit("keV"))
	require.NoError(t, err)
	require.NoError(t, p.SetValue(18.0))
	assert.False(t, p.IsDefault())
	p.RestoreDefault()
	assert.True(t, p.IsDefault())
	assert.Equal(t, 12.4, p.Value())
}

func TestCopyIsIndependent(t *testing.T) {
	p, err := New("label", "Label", Text, "a")
	require.NoError(t, err)
	cp := p.Copy()
	require.NoError(t, cp.SetValue("b"))
	assert.Equal(t, "a", p.Value())
	assert.Equal(t, "b", cp.Value())
}

func TestDumpTuple(t *testing.T) {
	p, err := New("unit", "Unit", Text, "m", WithUnit(""), WithTooltip("axis unit"))
	require.NoError(t, err)
	d := p.Dump()
	assert.Equal(t, "unit", d[0])
	assert.Equal(t, "text", d[1])
	assert.Equal(t, "m", d[2])
}

func TestCollectionAddRejectsDuplicate(t *testing.T) {
	c := NewCollection()
	p1, _ := New("x", "X", Integral, 1)
	p2, _ := New("x", "X again", Integral, 2)
	require.NoError(t, c.Add(p1))
	err := c.Add(p2)
	assert.Error(t, err)
}

func TestCollectionSetValueUnknownKey(t *testing.T) {
	c := NewCollection()
	err := c.SetValue("nope", 1)
	assert.Error(t, err)
}

func TestCollectionCopyIndependence(t *testing.T) {
	p1, _ := New("a", "A", Integral, 1)
	c := NewCollection(p1)
	cp := c.Copy()
	require.NoError(t, cp.SetValue("a", 2))
	assert.Equal(t, 1, c.Value("a"))
	assert.Equal(t, 2, cp.Value("a"))
}

func TestCollectionMergeCollision(t *testing.T) {
	p1, _ := New("a", "A", Integral, 1)
	p2, _ := New("a", "A dup", Integral, 2)
	c1 := NewCollection(p1)
	c2 := NewCollection(p2)
	err := c1.Merge(c2)
	assert.Error(t, err)
}

func TestCollectionKeysPreserveInsertionOrder(t *testing.T) {
	p1, _ := New("first", "First", Integral, 1)
	p2, _ := New("second", "Second", Integral, 2)
	p3, _ := New("third", "Third", Integral, 3)
	c := NewCollection(p1, p2, p3)
	assert.Equal(t, []string{"first", "second", "third"}, c.Keys())
}
