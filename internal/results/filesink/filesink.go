// Package filesink implements a file-based results.Sink: one node's
// composite is written as a small YAML header (shape, axis metadata, the
// SinkMetadata envelope) followed by a flat binary blob of float64
// values, matching the "/entry/..." persisted-state layout's content
// without requiring an HDF5 dependency.
package filesink

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/results"
)

const formatName = "pydidas YAML"

// Sink is the YAML+binary results.Sink implementation.
type Sink struct{}

func (Sink) FormatName() string        { return formatName }
func (Sink) ExtensionsImport() []string { return []string{".yaml", ".yml"} }
func (Sink) ExtensionsExport() []string { return []string{".yaml"} }
func (Sink) Dimensions() []int          { return nil }

type header struct {
	Shape      []int             `yaml:"shape"`
	AxisLabels map[int]string    `yaml:"axis_labels"`
	AxisUnits  map[int]string    `yaml:"axis_units"`
	AxisRanges map[int][]float64 `yaml:"axis_ranges"`
	Metadata   map[string]any    `yaml:"metadata"`

	NodeID     int    `yaml:"node_id"`
	Label      string `yaml:"label"`
	DataLabel  string `yaml:"data_label"`
	PluginName string `yaml:"plugin_name"`
	ScanTitle  string `yaml:"scan_title"`

	DataFile string `yaml:"data_file"`
}

func (Sink) ExportToFile(path string, d *dataset.Dataset, meta results.SinkMetadata) error {
	dataPath := path + ".bin"
	h := header{
		Shape:      d.Shape(),
		AxisLabels: make(map[int]string),
		AxisUnits:  make(map[int]string),
		AxisRanges: make(map[int][]float64),
		Metadata:   d.MetadataMap(),
		NodeID:     meta.NodeID,
		Label:      meta.Label,
		DataLabel:  meta.DataLabel,
		PluginName: meta.PluginName,
		ScanTitle:  meta.ScanTitle,
		DataFile:   dataPath,
	}
	for axis := 0; axis < d.Ndim(); axis++ {
		h.AxisLabels[axis] = d.AxisLabel(axis)
		h.AxisUnits[axis] = d.AxisUnit(axis)
		if rng := d.AxisRange(axis); rng != nil {
			h.AxisRanges[axis] = rng
		}
	}

	out, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	return writeBinary(dataPath, d.Raw())
}

func (Sink) ImportFromFile(path string) (*dataset.Dataset, results.SinkMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, results.SinkMetadata{}, err
	}
	var h header
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return nil, results.SinkMetadata{}, fmt.Errorf("parsing header: %w", err)
	}
	data, err := readBinary(h.DataFile)
	if err != nil {
		return nil, results.SinkMetadata{}, err
	}
	d, err := dataset.New(h.Shape, data)
	if err != nil {
		return nil, results.SinkMetadata{}, err
	}
	for axis, label := range h.AxisLabels {
		d.SetAxisLabel(axis, label)
	}
	for axis, unit := range h.AxisUnits {
		d.SetAxisUnit(axis, unit)
	}
	for axis, rng := range h.AxisRanges {
		_ = d.SetAxisRange(axis, rng)
	}
	for k, v := range h.Metadata {
		d.SetMetadata(k, v)
	}
	meta := results.SinkMetadata{
		NodeID: h.NodeID, Label: h.Label, DataLabel: h.DataLabel,
		PluginName: h.PluginName, ScanTitle: h.ScanTitle,
	}
	return d, meta, nil
}

func writeBinary(path string, data []float64) error {
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return os.WriteFile(path, buf, 0o644)
}

func readBinary(path string) ([]float64, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out, nil
}

func init() {
	_ = results.Global().Register(Sink{})
}
