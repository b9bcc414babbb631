// Package dataset implements pydidas's Dataset: an N-dimensional float64
// array carrying per-axis labels, units, and ranges alongside a metadata
// map, the value type every plugin consumes and produces.
package dataset

import (
	"fmt"

	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// Dataset is a dense row-major N-dimensional array of float64 values (axis
// 0 is slowest-varying, the last axis fastest-varying, matching NumPy
// C-order) plus the axis metadata pydidas plugins rely on to stay
// self-describing as they pass through a WorkflowTree.
type Dataset struct {
	data  []float64
	shape []int

	axisLabels map[int]string
	axisUnits  map[int]string
	axisRanges map[int][]float64
	metadata   map[string]any
}

// New builds a Dataset from flat data in row-major order. Returns a
// *pderrors.SchemaError if len(data) does not equal the product of shape.
func New(shape []int, data []float64) (*Dataset, error) {
	n := numElements(shape)
	if len(data) != n {
		return nil, pderrors.NewSchemaError("dataset",
			fmt.Sprintf("data has %d elements, shape %v requires %d", len(data), shape, n))
	}
	return &Dataset{
		data:       data,
		shape:      append([]int(nil), shape...),
		axisLabels: make(map[int]string),
		axisUnits:  make(map[int]string),
		axisRanges: make(map[int][]float64),
		metadata:   make(map[string]any),
	}, nil
}

// Zeros builds a Dataset of the given shape, all zero-valued.
func Zeros(shape []int) *Dataset {
	d, _ := New(shape, make([]float64, numElements(shape)))
	return d
}

func numElements(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// Shape returns the dataset's dimensions.
func (d *Dataset) Shape() []int { return append([]int(nil), d.shape...) }

// Ndim returns the number of dimensions.
func (d *Dataset) Ndim() int { return len(d.shape) }

// Size returns the total element count.
func (d *Dataset) Size() int { return len(d.data) }

// Raw returns the underlying flat row-major buffer. Callers must not
// retain it past a reshape/slice operation on d.
func (d *Dataset) Raw() []float64 { return d.data }

func (d *Dataset) flatIndex(indices []int) (int, error) {
	if len(indices) != len(d.shape) {
		return 0, pderrors.NewFrameConfigError(
			fmt.Sprintf("index has %d components, dataset has %d dimensions", len(indices), len(d.shape)))
	}
	flat := 0
	for axis, idx := range indices {
		if idx < 0 || idx >= d.shape[axis] {
			return 0, pderrors.NewFrameConfigError(
				fmt.Sprintf("index %d out of bounds for axis %d with size %d", idx, axis, d.shape[axis]))
		}
		flat = flat*d.shape[axis] + idx
	}
	return flat, nil
}

// At returns the value at the given multi-index.
func (d *Dataset) At(indices ...int) (float64, error) {
	flat, err := d.flatIndex(indices)
	if err != nil {
		return 0, err
	}
	return d.data[flat], nil
}

// Set assigns the value at the given multi-index.
func (d *Dataset) Set(value float64, indices ...int) error {
	flat, err := d.flatIndex(indices)
	if err != nil {
		return err
	}
	d.data[flat] = value
	return nil
}

// SetAxisLabel records the display label for axis.
func (d *Dataset) SetAxisLabel(axis int, label string) { d.axisLabels[axis] = label }

// AxisLabel returns the display label for axis, or "" if unset.
func (d *Dataset) AxisLabel(axis int) string { return d.axisLabels[axis] }

// SetAxisUnit records the physical unit for axis.
func (d *Dataset) SetAxisUnit(axis int, unit string) { d.axisUnits[axis] = unit }

// AxisUnit returns the physical unit for axis, or "" if unset.
func (d *Dataset) AxisUnit(axis int) string { return d.axisUnits[axis] }

// SetAxisRange records the coordinate values for axis; len(values) must
// equal d.shape[axis].
func (d *Dataset) SetAxisRange(axis int, values []float64) error {
	if axis < 0 || axis >= len(d.shape) {
		return pderrors.NewFrameConfigError(fmt.Sprintf("axis %d out of range", axis))
	}
	if len(values) != d.shape[axis] {
		return pderrors.NewSchemaError("dataset",
			fmt.Sprintf("axis %d range has %d values, shape has %d", axis, len(values), d.shape[axis]))
	}
	d.axisRanges[axis] = append([]float64(nil), values...)
	return nil
}

// AxisRange returns the coordinate values for axis, or nil if unset.
func (d *Dataset) AxisRange(axis int) []float64 { return d.axisRanges[axis] }

// SetMetadata records an arbitrary metadata entry (e.g. exposure time,
// detector serial number) carried alongside the array data.
func (d *Dataset) SetMetadata(key string, value any) { d.metadata[key] = value }

// Metadata returns the metadata value for key, and whether it was present.
func (d *Dataset) Metadata(key string) (any, bool) {
	v, ok := d.metadata[key]
	return v, ok
}

// MetadataMap returns a shallow copy of all metadata entries.
func (d *Dataset) MetadataMap() map[string]any {
	out := make(map[string]any, len(d.metadata))
	for k, v := range d.metadata {
		out[k] = v
	}
	return out
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	cp := &Dataset{
		data:       append([]float64(nil), d.data...),
		shape:      append([]int(nil), d.shape...),
		axisLabels: make(map[int]string, len(d.axisLabels)),
		axisUnits:  make(map[int]string, len(d.axisUnits)),
		axisRanges: make(map[int][]float64, len(d.axisRanges)),
		metadata:   make(map[string]any, len(d.metadata)),
	}
	for k, v := range d.axisLabels {
		cp.axisLabels[k] = v
	}
	for k, v := range d.axisUnits {
		cp.axisUnits[k] = v
	}
	for k, v := range d.axisRanges {
		cp.axisRanges[k] = append([]float64(nil), v...)
	}
	for k, v := range d.metadata {
		cp.metadata[k] = v
	}
	return cp
}

func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(shape=%v, size=%d)", d.shape, len(d.data))
}
