package pgresults

import "github.com/uptrace/bun"

// ResultComposite is one node's composite, stored as a row: the dense
// float64 buffer plus its shape and axis metadata, all flattened to
// column types bun/pgdialect can marshal directly.
type ResultComposite struct {
	bun.BaseModel `bun:"table:result_composites"`

	RunID      string            `bun:"run_id,pk"`
	NodeID     int               `bun:"node_id,pk"`
	Label      string            `bun:"label"`
	DataLabel  string            `bun:"data_label"`
	PluginName string            `bun:"plugin_name"`
	ScanTitle  string            `bun:"scan_title"`
	Shape      []int             `bun:"shape,array"`
	Data       []float64         `bun:"data,array"`
	AxisLabels map[string]string `bun:"axis_labels"`
	AxisUnits  map[string]string `bun:"axis_units"`
}
