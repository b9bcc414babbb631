// Package scancontext implements pydidas's Scan context: the process-wide
// description of the scan geometry a WorkflowTree is executed over, and the
// frame-index ↔ scan-position bijection every plugin and result consumer
// relies on.
package scancontext

import (
	"fmt"
	"sync"

	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// MultiFrameHandling names how multiple raw frames belonging to one scan
// point are combined into a single scan-point value.
type MultiFrameHandling string

const (
	Average MultiFrameHandling = "Average"
	Sum     MultiFrameHandling = "Sum"
	Maximum MultiFrameHandling = "Maximum"
	Stack   MultiFrameHandling = "Stack"
)

const maxScanDim = 4

// Context is the Scan context: a Collection of per-dimension geometry
// parameters plus the multi-frame parameters, exposing the derived
// quantities (n_points, shape, n_frames_required) and the frame-index
// bijection.
//
// Row-major ordering is fixed dimension 0 slowest-varying, the declared
// last dimension fastest-varying — matching NumPy's C-order
// unravel_index, which is the convention this package's bijection
// implements.
type Context struct {
	mu     sync.RWMutex
	params *param.Collection
}

// New builds an empty Context with scan_dim defaulted to 1 and all
// multi-frame parameters at their identity defaults (no multi-frame
// combination).
func New() *Context {
	dims := param.NewCollection()
	mustAdd(dims, param.MustNew("scan_dim", "Scan dimensionality", param.Integral, 1, param.WithChoices(1, 2, 3, 4)))
	mustAdd(dims, param.MustNew("frame_indices_per_scan_point", "Frame index increment per scan point", param.Integral, 1))
	mustAdd(dims, param.MustNew("scan_frames_per_point", "Frames consumed per scan point", param.Integral, 1))
	mustAdd(dims, param.MustNew("scan_multi_frame_handling", "Multi-frame combination rule", param.Enum, string(Average),
		param.WithChoices(string(Average), string(Sum), string(Maximum), string(Stack))))

	for d := 0; d < maxScanDim; d++ {
		mustAdd(dims, param.MustNew(fmt.Sprintf("scan_dim%d_n_points", d), fmt.Sprintf("Dim %d points", d), param.Integral, 1))
		mustAdd(dims, param.MustNew(fmt.Sprintf("scan_dim%d_delta", d), fmt.Sprintf("Dim %d step", d), param.Real, 1.0))
		mustAdd(dims, param.MustNew(fmt.Sprintf("scan_dim%d_offset", d), fmt.Sprintf("Dim %d offset", d), param.Real, 0.0))
		mustAdd(dims, param.MustNew(fmt.Sprintf("scan_dim%d_unit", d), fmt.Sprintf("Dim %d unit", d), param.Text, ""))
		mustAdd(dims, param.MustNew(fmt.Sprintf("scan_dim%d_label", d), fmt.Sprintf("Dim %d label", d), param.Text, fmt.Sprintf("dim_%d", d)))
	}
	return &Context{params: dims}
}

func mustAdd(c *param.Collection, p *param.Parameter) {
	if err := c.Add(p); err != nil {
		panic(err)
	}
}

var (
	locatorOnce sync.Once
	locator     *Context
)

// Instance returns the process-wide canonical Scan context, constructing it
// on first use. Most callers want this; tests and frozen-clone paths use
// New directly.
func Instance() *Context {
	locatorOnce.Do(func() { locator = New() })
	return locator
}

// Params exposes the underlying Collection for direct get/set access.
func (c *Context) Params() *param.Collection { return c.params }

// FromCollection wraps an already-populated Collection as a Context,
// used when reconstructing a frozen Scan context from its serialized
// form inside a worker process.
func FromCollection(c *param.Collection) *Context { return &Context{params: c} }

// NDim returns the configured scan_dim.
func (c *Context) NDim() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params.Value("scan_dim").(int)
}

// Shape returns n_points[d] for d in [0, NDim).
func (c *Context) Shape() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ndim := c.params.Value("scan_dim").(int)
	shape := make([]int, ndim)
	for d := 0; d < ndim; d++ {
		shape[d] = c.params.Value(fmt.Sprintf("scan_dim%d_n_points", d)).(int)
	}
	return shape
}

// NPoints returns Π n_points[d] over the configured dimensions.
func (c *Context) NPoints() int {
	n := 1
	for _, s := range c.Shape() {
		n *= s
	}
	return n
}

func (c *Context) frameIndicesPerScanPoint() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params.Value("frame_indices_per_scan_point").(int)
}

func (c *Context) scanFramesPerPoint() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params.Value("scan_frames_per_point").(int)
}

// MultiFrameHandling returns the configured combination rule.
func (c *Context) MultiFrameHandling() MultiFrameHandling {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return MultiFrameHandling(c.params.Value("scan_multi_frame_handling").(string))
}

// NFramesRequired returns the number of raw frames the scan consumes,
// which exceeds NPoints whenever frame_indices_per_scan_point or
// scan_frames_per_point is configured beyond the single-frame-per-point
// default.
func (c *Context) NFramesRequired() int {
	n := c.NPoints()
	if n == 0 {
		return 0
	}
	step := c.frameIndicesPerScanPoint()
	consumed := c.scanFramesPerPoint()
	return (n-1)*step + consumed
}

// GetRangeForDim returns offset + delta*arange(n_points[dim]) for the
// given dimension.
func (c *Context) GetRangeForDim(dim int) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ndim := c.params.Value("scan_dim").(int)
	if dim < 0 || dim >= ndim {
		return nil, pderrors.NewFrameConfigError(fmt.Sprintf("dim %d out of range for scan_dim=%d", dim, ndim))
	}
	n := c.params.Value(fmt.Sprintf("scan_dim%d_n_points", dim)).(int)
	delta := c.params.Value(fmt.Sprintf("scan_dim%d_delta", dim)).(float64)
	offset := c.params.Value(fmt.Sprintf("scan_dim%d_offset", dim)).(float64)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = offset + delta*float64(i)
	}
	return out, nil
}

// GetFramePositionInScan maps a raw frame index to its scan-point
// multi-index, honouring the configured frame stepping. Valid for
// 0 <= frameIndex < NFramesRequired(); any other value is a
// *pderrors.FrameConfigError.
func (c *Context) GetFramePositionInScan(frameIndex int) ([]int, error) {
	nFrames := c.NFramesRequired()
	if frameIndex < 0 || frameIndex >= nFrames {
		return nil, pderrors.NewFrameConfigError(
			fmt.Sprintf("frame index %d out of range [0, %d)", frameIndex, nFrames))
	}
	step := c.frameIndicesPerScanPoint()
	scanPoint := frameIndex / step
	shape := c.Shape()
	if scanPoint >= numElements(shape) {
		return nil, pderrors.NewFrameConfigError(
			fmt.Sprintf("frame index %d maps to scan point %d beyond grid", frameIndex, scanPoint))
	}
	return unravelRowMajor(scanPoint, shape), nil
}

func numElements(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// unravelRowMajor is pydidas's fixed frame-index ordering: dimension 0
// slowest-varying, the last dimension fastest-varying.
func unravelRowMajor(index int, shape []int) []int {
	out := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		out[d] = index % shape[d]
		index /= shape[d]
	}
	return out
}

// Clone deep-copies the Context, used when a run freezes the process-wide
// Scan singleton into a WorkflowResults object or clones it into a worker
// child process.
func (c *Context) Clone() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Context{params: c.params.Copy()}
}
