package app

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/plugin"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

// workflowAppWire is the (class, params, config) tuple a WorkflowApp
// crosses the worker-process boundary as: the scan context's parameters
// and the tree's export-to-string dialect, both plain YAML text so the
// wire form stays inspectable in worker logs.
type workflowAppWire struct {
	ScanParamsYAML string `yaml:"scan_params"`
	TreeYAML       string `yaml:"tree"`
}

// Kind identifies WorkflowApp to the worker-side app decoder registry.
func (a *WorkflowApp) Kind() string { return "workflow" }

// MarshalForWorker serializes the frozen scan and tree into the
// worker-reconstructable wire form.
func (a *WorkflowApp) MarshalForWorker() ([]byte, error) {
	scanYAML, err := yaml.Marshal(a.scan.Params())
	if err != nil {
		return nil, fmt.Errorf("marshal scan params: %w", err)
	}
	treeYAML, err := a.tree.ExportToString()
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}
	return yaml.Marshal(workflowAppWire{ScanParamsYAML: string(scanYAML), TreeYAML: treeYAML})
}

func decodeWorkflowApp(data []byte) (App, error) {
	var wire workflowAppWire
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal workflow app wire form: %w", err)
	}
	scanParams := param.NewCollection()
	if err := yaml.Unmarshal([]byte(wire.ScanParamsYAML), scanParams); err != nil {
		return nil, fmt.Errorf("unmarshal scan params: %w", err)
	}
	tree, err := workflow.ImportFromString(wire.TreeYAML, plugin.Global())
	if err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return NewWorkflowApp(scancontext.FromCollection(scanParams), tree), nil
}

func init() {
	RegisterKind("workflow", decodeWorkflowApp)
}
