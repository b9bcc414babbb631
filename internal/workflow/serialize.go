package workflow

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pydidas/pydidas-go/internal/plugin"
)

// nodeRecord is the export/import YAML dialect for one node: depth-first
// order, parent linkage by id, and parameter values keyed by refkey.
type nodeRecord struct {
	NodeID     int            `yaml:"node_id"`
	ParentID   int            `yaml:"parent_id"`
	PluginName string         `yaml:"plugin_name"`
	Params     map[string]any `yaml:"params"`
}

// ExportToString renders the tree as human-readable YAML listing nodes in
// depth-first order: {node_id, parent_id, plugin_name, params}.
func (t *Tree) ExportToString() (string, error) {
	var records []nodeRecord
	t.walkDepthFirst(func(n *Node) {
		parentID := -1
		if n.parent != nil {
			parentID = n.parent.id
		}
		records = append(records, nodeRecord{
			NodeID:     n.id,
			ParentID:   parentID,
			PluginName: n.plugin.Name(),
			Params:     n.plugin.Params().Values(),
		})
	})
	out, err := yaml.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ImportFromString rebuilds a Tree from the ExportToString dialect,
// resolving plugin_name against collection. Node order in the source must
// already be depth-first (parent before child), matching what
// ExportToString produces.
func ImportFromString(source string, collection *plugin.Collection) (*Tree, error) {
	var records []nodeRecord
	if err := yaml.Unmarshal([]byte(source), &records); err != nil {
		return nil, err
	}

	t := New()
	byOldID := make(map[int]*Node)
	for _, rec := range records {
		p, err := collection.New(rec.PluginName)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", rec.NodeID, err)
		}
		for k, v := range rec.Params {
			if err := p.Params().SetValue(k, v); err != nil {
				return nil, fmt.Errorf("node %d: %w", rec.NodeID, err)
			}
		}
		var parent *Node
		if rec.ParentID >= 0 {
			var ok bool
			parent, ok = byOldID[rec.ParentID]
			if !ok {
				return nil, fmt.Errorf("node %d references unknown parent %d", rec.NodeID, rec.ParentID)
			}
		}
		n, err := t.CreateAndAddNode(p, parent, false)
		if err != nil {
			return nil, err
		}
		byOldID[rec.NodeID] = n
	}
	return t, nil
}

// describeShapes renders a map[int][]int as a stable, sorted-by-id string,
// used by diagnostics and tests that want a deterministic printout of
// GetAllResultShapes.
func describeShapes(shapes map[int][]int) string {
	ids := make([]int, 0, len(shapes))
	for id := range shapes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d: %v\n", id, shapes[id])
	}
	return b.String()
}
