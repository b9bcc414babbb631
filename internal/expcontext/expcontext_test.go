package expcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAndSetValue(t *testing.T) {
	c := New()
	assert.Equal(t, 1.0, c.Params().Value("xray_wavelength"))
	require.NoError(t, c.Params().SetValue("detector_dist", 0.35))
	assert.Equal(t, 0.35, c.Params().Value("detector_dist"))
}

func TestSetValueRejectsWrongType(t *testing.T) {
	c := New()
	err := c.Params().SetValue("detector_name", 5)
	assert.Error(t, err)
}

func TestCloneIndependence(t *testing.T) {
	c := New()
	clone := c.Clone()
	require.NoError(t, clone.Params().SetValue("detector_dist", 1.2))
	assert.Equal(t, 0.0, c.Params().Value("detector_dist"))
	assert.Equal(t, 1.2, clone.Params().Value("detector_dist"))
}
