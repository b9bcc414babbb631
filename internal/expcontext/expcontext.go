// Package expcontext implements pydidas's DiffractionExp context: a plain
// ParameterCollection of beamline and detector geometry, with no behaviour
// beyond Parameter semantics.
package expcontext

import (
	"sync"

	"github.com/pydidas/pydidas-go/internal/param"
)

// Context is the diffraction-experiment context: wavelength and detector
// geometry/pixel parameters, process-wide.
type Context struct {
	params *param.Collection
}

// New builds a Context with the PONI/pyFAI-style geometry parameters at
// their identity defaults.
func New() *Context {
	c := param.NewCollection(
		param.MustNew("xray_wavelength", "X-ray wavelength", param.Real, 1.0, param.WithUnit("angstrom")),
		param.MustNew("detector_dist", "Detector distance", param.Real, 0.0, param.WithUnit("m")),
		param.MustNew("detector_poni1", "Detector PONI 1", param.Real, 0.0, param.WithUnit("m")),
		param.MustNew("detector_poni2", "Detector PONI 2", param.Real, 0.0, param.WithUnit("m")),
		param.MustNew("detector_rot1", "Detector rotation 1", param.Real, 0.0, param.WithUnit("rad")),
		param.MustNew("detector_rot2", "Detector rotation 2", param.Real, 0.0, param.WithUnit("rad")),
		param.MustNew("detector_rot3", "Detector rotation 3", param.Real, 0.0, param.WithUnit("rad")),
		param.MustNew("detector_name", "Detector name", param.Text, ""),
		param.MustNew("detector_npixx", "Detector pixel count x", param.Integral, 0),
		param.MustNew("detector_npixy", "Detector pixel count y", param.Integral, 0),
		param.MustNew("detector_pxsizex", "Detector pixel size x", param.Real, 0.0, param.WithUnit("m")),
		param.MustNew("detector_pxsizey", "Detector pixel size y", param.Real, 0.0, param.WithUnit("m")),
	)
	return &Context{params: c}
}

// Params exposes the underlying Collection for direct get/set access.
func (c *Context) Params() *param.Collection { return c.params }

// Clone deep-copies the Context.
func (c *Context) Clone() *Context { return &Context{params: c.params.Copy()} }

var (
	locatorOnce sync.Once
	locator     *Context
)

// Instance returns the process-wide canonical DiffractionExp context.
func Instance() *Context {
	locatorOnce.Do(func() { locator = New() })
	return locator
}
