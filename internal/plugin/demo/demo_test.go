package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/plugin"
)

func TestFrameLoaderProducesConfiguredShape(t *testing.T) {
	p := NewFrameLoader(8, 12)
	shape, err := p.CalculateResultShape()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12}, shape)

	frame, _, err := p.Execute(0, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12}, frame.Shape())
}

func TestTransformPassesThroughByDefault(t *testing.T) {
	p := NewTransform("")
	p.SetInputShape([]int{8, 12})
	shape, err := p.CalculateResultShape()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12}, shape)
}

func TestTransformAppliesShapeExpr(t *testing.T) {
	p := NewTransform("input_shape[0:1]")
	p.SetInputShape([]int{8, 12})
	shape, err := p.CalculateResultShape()
	require.NoError(t, err)
	assert.Equal(t, []int{8}, shape)
}

func TestDemoPluginsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, n := range plugin.Global().Names() {
		names[n] = true
	}
	assert.True(t, names["demo.frame_loader"])
	assert.True(t, names["demo.transform"])
}
