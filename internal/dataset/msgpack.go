package dataset

import "github.com/vmihailenco/msgpack/v5"

// wireForm is the msgpack wire representation of a Dataset, used when a
// result frame crosses a worker queue. Axis labels, units and ranges are
// carried as maps keyed by axis index, so axes without an entry stay
// absent after decoding.
type wireForm struct {
	Shape      []int              `msgpack:"shape"`
	Data       []float64          `msgpack:"data"`
	AxisLabels map[int]string     `msgpack:"axis_labels"`
	AxisUnits  map[int]string     `msgpack:"axis_units"`
	AxisRanges map[int][]float64  `msgpack:"axis_ranges"`
	Metadata   map[string]any     `msgpack:"metadata"`
}

// EncodeMsgpack serializes d for transport across a worker queue.
func (d *Dataset) EncodeMsgpack() ([]byte, error) {
	return msgpack.Marshal(wireForm{
		Shape:      d.shape,
		Data:       d.data,
		AxisLabels: d.axisLabels,
		AxisUnits:  d.axisUnits,
		AxisRanges: d.axisRanges,
		Metadata:   d.metadata,
	})
}

// DecodeMsgpack reconstructs a Dataset previously written by EncodeMsgpack.
func DecodeMsgpack(b []byte) (*Dataset, error) {
	var w wireForm
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	d := &Dataset{
		data:       w.Data,
		shape:      w.Shape,
		axisLabels: w.AxisLabels,
		axisUnits:  w.AxisUnits,
		axisRanges: w.AxisRanges,
		metadata:   w.Metadata,
	}
	if d.axisLabels == nil {
		d.axisLabels = make(map[int]string)
	}
	if d.axisUnits == nil {
		d.axisUnits = make(map[int]string)
	}
	if d.axisRanges == nil {
		d.axisRanges = make(map[int][]float64)
	}
	if d.metadata == nil {
		d.metadata = make(map[string]any)
	}
	return d, nil
}
