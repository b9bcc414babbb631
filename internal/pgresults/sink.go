package pgresults

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/pderrors"
	"github.com/pydidas/pydidas-go/internal/results"
)

const formatName = "pydidas Postgres"

// Sink is the Postgres-backed results.Sink. The path argument
// ExportToFile/ImportFromFile receive (constructed by the results package
// from a directory + node filename) is used verbatim as the row's run_id,
// since this sink has no real filesystem location of its own.
type Sink struct {
	DB *bun.DB
}

func (s Sink) FormatName() string         { return formatName }
func (s Sink) ExtensionsImport() []string { return []string{".pgresult"} }
func (s Sink) ExtensionsExport() []string { return []string{".pgresult"} }
func (s Sink) Dimensions() []int          { return nil }

func (s Sink) ExportToFile(path string, d *dataset.Dataset, meta results.SinkMetadata) error {
	if s.DB == nil {
		return pderrors.NewConfigurationError("pgresults sink has no database connection configured", nil)
	}
	axisLabels := make(map[string]string, d.Ndim())
	axisUnits := make(map[string]string, d.Ndim())
	for axis := 0; axis < d.Ndim(); axis++ {
		axisLabels[fmt.Sprintf("%d", axis)] = d.AxisLabel(axis)
		axisUnits[fmt.Sprintf("%d", axis)] = d.AxisUnit(axis)
	}
	row := &ResultComposite{
		RunID:      path,
		NodeID:     meta.NodeID,
		Label:      meta.Label,
		DataLabel:  meta.DataLabel,
		PluginName: meta.PluginName,
		ScanTitle:  meta.ScanTitle,
		Shape:      d.Shape(),
		Data:       d.Raw(),
		AxisLabels: axisLabels,
		AxisUnits:  axisUnits,
	}
	_, err := s.DB.NewInsert().Model(row).
		On("CONFLICT (run_id, node_id) DO UPDATE").
		Exec(context.Background())
	return err
}

func (s Sink) ImportFromFile(path string) (*dataset.Dataset, results.SinkMetadata, error) {
	if s.DB == nil {
		return nil, results.SinkMetadata{}, pderrors.NewConfigurationError("pgresults sink has no database connection configured", nil)
	}
	var row ResultComposite
	err := s.DB.NewSelect().Model(&row).Where("run_id = ?", path).Scan(context.Background())
	if err != nil {
		return nil, results.SinkMetadata{}, err
	}
	d, err := dataset.New(row.Shape, row.Data)
	if err != nil {
		return nil, results.SinkMetadata{}, err
	}
	for axisStr, label := range row.AxisLabels {
		axis := parseAxis(axisStr)
		d.SetAxisLabel(axis, label)
	}
	for axisStr, unit := range row.AxisUnits {
		axis := parseAxis(axisStr)
		d.SetAxisUnit(axis, unit)
	}
	meta := results.SinkMetadata{
		NodeID: row.NodeID, Label: row.Label, DataLabel: row.DataLabel,
		PluginName: row.PluginName, ScanTitle: row.ScanTitle,
	}
	return d, meta, nil
}

func parseAxis(s string) int {
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}

// Register binds a Sink backed by db into the given results.Registry.
func Register(registry *results.Registry, db *bun.DB) error {
	return registry.Register(Sink{DB: db})
}
