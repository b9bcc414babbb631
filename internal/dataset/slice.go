package dataset

import "github.com/pydidas/pydidas-go/internal/pderrors"

// Slice fixes axis to index, returning a new Dataset with that axis
// removed and the remaining axes renumbered contiguously (so what was
// axis 2 becomes axis 1 if axis 0 was the one removed). Axis metadata for
// the surviving axes is carried over under its new index; metadata for the
// removed axis is dropped.
func (d *Dataset) Slice(axis, index int) (*Dataset, error) {
	if axis < 0 || axis >= len(d.shape) {
		return nil, pderrors.NewFrameConfigError("slice axis out of range")
	}
	if index < 0 || index >= d.shape[axis] {
		return nil, pderrors.NewFrameConfigError("slice index out of range")
	}

	newShape := make([]int, 0, len(d.shape)-1)
	for i, s := range d.shape {
		if i != axis {
			newShape = append(newShape, s)
		}
	}
	out := Zeros(newShape)
	out.metadata = d.MetadataMap()

	newAxis := 0
	for oldAxis := range d.shape {
		if oldAxis == axis {
			continue
		}
		if label, ok := d.axisLabels[oldAxis]; ok {
			out.axisLabels[newAxis] = label
		}
		if unit, ok := d.axisUnits[oldAxis]; ok {
			out.axisUnits[newAxis] = unit
		}
		if rng, ok := d.axisRanges[oldAxis]; ok {
			out.axisRanges[newAxis] = append([]float64(nil), rng...)
		}
		newAxis++
	}

	indices := make([]int, len(d.shape))
	walkIndices(newShape, func(subIdx []int) {
		k := 0
		for i := range d.shape {
			if i == axis {
				indices[i] = index
			} else {
				indices[i] = subIdx[k]
				k++
			}
		}
		flat, _ := d.flatIndex(indices)
		outFlat, _ := out.flatIndex(subIdx)
		out.data[outFlat] = d.data[flat]
	})
	return out, nil
}

// SelectIndices returns a new Dataset restricted, along axis, to the given
// indices in order (duplicates allowed) — unlike Slice, axis survives with
// its new length len(indices) instead of being removed. This backs range
// and fancy-index selection, where Slice's single-index-and-drop semantics
// don't apply.
func (d *Dataset) SelectIndices(axis int, indices []int) (*Dataset, error) {
	if axis < 0 || axis >= len(d.shape) {
		return nil, pderrors.NewFrameConfigError("select axis out of range")
	}
	for _, idx := range indices {
		if idx < 0 || idx >= d.shape[axis] {
			return nil, pderrors.NewFrameConfigError("select index out of range")
		}
	}

	newShape := append([]int(nil), d.shape...)
	newShape[axis] = len(indices)
	out := Zeros(newShape)
	out.metadata = d.MetadataMap()

	for a := range d.shape {
		if label, ok := d.axisLabels[a]; ok {
			out.axisLabels[a] = label
		}
		if unit, ok := d.axisUnits[a]; ok {
			out.axisUnits[a] = unit
		}
		if a == axis {
			continue
		}
		if rng, ok := d.axisRanges[a]; ok {
			out.axisRanges[a] = append([]float64(nil), rng...)
		}
	}
	if rng, ok := d.axisRanges[axis]; ok {
		newRng := make([]float64, len(indices))
		for i, idx := range indices {
			newRng[i] = rng[idx]
		}
		out.axisRanges[axis] = newRng
	}

	srcIdx := make([]int, len(d.shape))
	walkIndices(newShape, func(subIdx []int) {
		for i := range d.shape {
			if i == axis {
				srcIdx[i] = indices[subIdx[i]]
			} else {
				srcIdx[i] = subIdx[i]
			}
		}
		flat, _ := d.flatIndex(srcIdx)
		outFlat, _ := out.flatIndex(subIdx)
		out.data[outFlat] = d.data[flat]
	})
	return out, nil
}

// Squeeze removes all axes of size 1, renumbering the rest contiguously.
func (d *Dataset) Squeeze() *Dataset {
	cur := d
	for axis := 0; axis < len(cur.shape); {
		if cur.shape[axis] == 1 {
			next, _ := cur.Slice(axis, 0)
			cur = next
			continue
		}
		axis++
	}
	return cur
}

// walkIndices invokes fn once for every multi-index into an array of the
// given shape, in row-major order (last axis fastest-varying).
func walkIndices(shape []int, fn func(idx []int)) {
	if numElements(shape) == 0 {
		return
	}
	idx := make([]int, len(shape))
	for {
		fn(idx)
		axis := len(shape) - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < shape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}
