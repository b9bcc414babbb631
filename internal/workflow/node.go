// Package workflow implements pydidas's WorkflowTree and WorkflowNode: a
// rooted DAG-as-tree of plugins, addressable by node_id, with shape
// propagation and a deterministic depth-first per-point traversal.
package workflow

import (
	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/plugin"
)

// Node wraps one plugin instance inside a tree. ResultShape is populated
// by Tree.PropagateShapesAndGlobalConfig; Results/ResultKWs are populated
// by Tree.ExecuteProcess and pruned afterward unless KeepResults is set.
type Node struct {
	id       int
	plugin   plugin.Plugin
	parent   *Node
	children []*Node

	// KeepResults overrides the default leaf-only result retention rule
	// for this node.
	KeepResults bool

	resultShape []int
	results     *dataset.Dataset
	resultKWs   map[string]any
}

// ID returns the node's tree-unique integer id.
func (n *Node) ID() int { return n.id }

// Plugin returns the wrapped plugin instance.
func (n *Node) Plugin() plugin.Plugin { return n.plugin }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in insertion order. Callers must
// not mutate the returned slice.
func (n *Node) Children() []*Node { return n.children }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// ResultShape returns the shape last computed by shape propagation.
func (n *Node) ResultShape() []int { return n.resultShape }

// Results returns the Dataset retained from the most recent execution, or
// nil if it was pruned (see Tree.ExecuteProcess).
func (n *Node) Results() *dataset.Dataset { return n.results }

// ResultKWs returns the kw map retained alongside Results, or nil if
// pruned.
func (n *Node) ResultKWs() map[string]any { return n.resultKWs }
