package results

import (
	"fmt"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// GetResults returns the composite for node_id.
func (s *Store) GetResults(nodeID int) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.composites[nodeID]
	if !ok {
		return nil, pderrors.NewFrameConfigError(fmt.Sprintf("node %d has no stored results", nodeID))
	}
	return d, nil
}

// GetResultsForFlattenedScan returns node_id's composite reshaped from
// scan.shape + rest to (prod(scan.shape),) + rest.
func (s *Store) GetResultsForFlattenedScan(nodeID int) (*dataset.Dataset, error) {
	composite, err := s.GetResults(nodeID)
	if err != nil {
		return nil, err
	}
	ndim := s.scan.NDim()
	shape := composite.Shape()
	scanN := 1
	for _, n := range shape[:ndim] {
		scanN *= n
	}
	newShape := append([]int{scanN}, shape[ndim:]...)
	flat, err := dataset.New(newShape, composite.Raw())
	if err != nil {
		return nil, err
	}
	for axis := ndim; axis < len(shape); axis++ {
		flat.SetAxisLabel(axis-ndim+1, composite.AxisLabel(axis))
		flat.SetAxisUnit(axis-ndim+1, composite.AxisUnit(axis))
		if rng := composite.AxisRange(axis); rng != nil {
			_ = flat.SetAxisRange(axis-ndim+1, rng)
		}
	}
	return flat, nil
}

// GetResultRanges returns node_id's axis ranges, dim -> range (nil if an
// axis has no declared range).
func (s *Store) GetResultRanges(nodeID int) (map[int][]float64, error) {
	composite, err := s.GetResults(nodeID)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]float64, composite.Ndim())
	for axis := 0; axis < composite.Ndim(); axis++ {
		out[axis] = composite.AxisRange(axis)
	}
	return out, nil
}

// ResultMetadata is the label/unit/range/metadata bundle GetResultMetadata
// returns for one node.
type ResultMetadata struct {
	Labels   map[int]string
	Units    map[int]string
	Ranges   map[int][]float64
	Metadata map[string]any
}

// GetResultMetadata returns node_id's axis labels/units/ranges plus any
// free-form dataset metadata.
func (s *Store) GetResultMetadata(nodeID int) (*ResultMetadata, error) {
	composite, err := s.GetResults(nodeID)
	if err != nil {
		return nil, err
	}
	md := &ResultMetadata{
		Labels: make(map[int]string), Units: make(map[int]string), Ranges: make(map[int][]float64),
	}
	for axis := 0; axis < composite.Ndim(); axis++ {
		md.Labels[axis] = composite.AxisLabel(axis)
		md.Units[axis] = composite.AxisUnit(axis)
		md.Ranges[axis] = composite.AxisRange(axis)
	}
	md.Metadata = composite.MetadataMap()
	return md, nil
}

// Index is a single axis selector for GetResultSubset: exactly one of Int,
// Slice, or Indices is set.
type Index struct {
	Int     *int
	Slice   *SliceBounds
	Indices []int
}

// SliceBounds is a Python-style [Start:Stop:Step) selector; Step defaults
// to 1 when zero. Start/Stop may be negative, counting back from axisLen.
type SliceBounds struct {
	Start, Stop, Step int
}

// resolve expands b into the explicit list of indices it selects along an
// axis of length axisLen.
func (b SliceBounds) resolve(axisLen int) []int {
	step := b.Step
	if step == 0 {
		step = 1
	}
	start, stop := b.Start, b.Stop
	if start < 0 {
		start += axisLen
	}
	if stop < 0 {
		stop += axisLen
	}

	var out []int
	if step > 0 {
		for i := start; i < stop && i < axisLen; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop && i >= 0; i += step {
			out = append(out, i)
		}
	}
	return out
}

// GetResultSubset applies slices (one Index per axis) to node_id's
// composite, after optionally flattening the scan dimensions, optionally
// squeezing singleton axes afterward.
func (s *Store) GetResultSubset(nodeID int, slices []Index, flattenedScanDim, squeeze bool) (*dataset.Dataset, error) {
	var composite *dataset.Dataset
	var err error
	if flattenedScanDim {
		composite, err = s.GetResultsForFlattenedScan(nodeID)
	} else {
		composite, err = s.GetResults(nodeID)
	}
	if err != nil {
		return nil, err
	}
	if len(slices) != composite.Ndim() {
		return nil, pderrors.NewFrameConfigError(
			fmt.Sprintf("subset has %d axis selectors, composite has %d axes", len(slices), composite.Ndim()))
	}

	out := composite
	// Apply axis selectors back-to-front: Int selectors remove an axis, so
	// processing from the end keeps lower axis indices valid for
	// selectors still to be applied. Slice/Indices selectors keep the
	// axis (just resize it), so their order relative to each other
	// doesn't matter.
	for axis := len(slices) - 1; axis >= 0; axis-- {
		sel := slices[axis]
		switch {
		case sel.Int != nil:
			out, err = out.Slice(axis, *sel.Int)
			if err != nil {
				return nil, err
			}
		case sel.Slice != nil:
			indices := sel.Slice.resolve(out.Shape()[axis])
			out, err = out.SelectIndices(axis, indices)
			if err != nil {
				return nil, err
			}
		case sel.Indices != nil:
			out, err = out.SelectIndices(axis, sel.Indices)
			if err != nil {
				return nil, err
			}
		}
	}
	if squeeze {
		out = out.Squeeze()
	}
	return out, nil
}
