package workflow

import (
	"fmt"
	"sort"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/pderrors"
	"github.com/pydidas/pydidas-go/internal/plugin"
)

// Tree is a rooted DAG-as-tree of Nodes, addressable by node_id, with
// deterministic depth-first traversal following children insertion order.
type Tree struct {
	root  *Node
	byID  map[int]*Node
	nextID int
}

// New builds an empty Tree.
func New() *Tree {
	return &Tree{byID: make(map[int]*Node)}
}

// CreateAndAddNode wraps p in a new Node, assigns it the next free
// node_id, and links it under parent. A nil parent makes the node the
// root; a second attempt at a root fails unless replaceRoot is true, in
// which case the previous root subtree is dropped from the index.
func (t *Tree) CreateAndAddNode(p plugin.Plugin, parent *Node, replaceRoot bool) (*Node, error) {
	if parent == nil {
		if t.root != nil && !replaceRoot {
			return nil, pderrors.NewFrameConfigError("tree already has a root; pass replaceRoot to replace it")
		}
		if t.root != nil {
			t.removeSubtree(t.root)
		}
	} else if _, ok := t.byID[parent.id]; !ok {
		return nil, pderrors.NewFrameConfigError("parent node is not part of this tree")
	}

	n := &Node{id: t.nextID, plugin: p, parent: parent}
	t.nextID++
	t.byID[n.id] = n
	if parent == nil {
		t.root = n
	} else {
		parent.children = append(parent.children, n)
	}
	return n, nil
}

func (t *Tree) removeSubtree(n *Node) {
	for _, c := range n.children {
		t.removeSubtree(c)
	}
	delete(t.byID, n.id)
}

// Root returns the tree's root node, or nil if empty.
func (t *Tree) Root() *Node { return t.root }

// Node returns the node for id, or nil if absent.
func (t *Tree) Node(id int) *Node { return t.byID[id] }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.byID) }

// Clone deep-copies the tree: every node's plugin is independently cloned
// via plugin.Clone, so mutating the copy's parameters never affects t.
// Used when freezing a tree into a run or cloning it into a worker
// process.
func (t *Tree) Clone() *Tree {
	cp := New()
	oldToNew := make(map[int]*Node, len(t.byID))
	t.walkDepthFirst(func(n *Node) {
		var parent *Node
		if n.parent != nil {
			parent = oldToNew[n.parent.id]
		}
		newNode, _ := cp.CreateAndAddNode(n.plugin.Clone(), parent, false)
		newNode.KeepResults = n.KeepResults
		oldToNew[n.id] = newNode
	})
	return cp
}

// walkDepthFirst visits every node in deterministic depth-first,
// children-insertion order, starting at the root.
func (t *Tree) walkDepthFirst(fn func(*Node)) {
	if t.root == nil {
		return
	}
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
}

// PropagateShapesAndGlobalConfig must be called after any parameter change
// and before any execution relies on shapes. For each node depth-first
// from the root, it injects the parent's result_shape as input_shape, then
// recomputes result_shape from the plugin.
func (t *Tree) PropagateShapesAndGlobalConfig() error {
	var propErr error
	t.walkDepthFirst(func(n *Node) {
		if propErr != nil {
			return
		}
		if n.parent != nil {
			n.plugin.SetInputShape(n.parent.resultShape)
		}
		shape, err := n.plugin.CalculateResultShape()
		if err != nil {
			propErr = fmt.Errorf("node %d (%s): %w", n.id, n.plugin.Name(), err)
			return
		}
		n.resultShape = shape
	})
	return propErr
}

// AllNodes returns every node in the tree in depth-first order.
func (t *Tree) AllNodes() []*Node {
	var out []*Node
	t.walkDepthFirst(func(n *Node) { out = append(out, n) })
	return out
}

// GetAllResultShapes returns node_id -> ResultShape for every node,
// requiring a prior PropagateShapesAndGlobalConfig call.
func (t *Tree) GetAllResultShapes() map[int][]int {
	out := make(map[int][]int, len(t.byID))
	for id, n := range t.byID {
		out[id] = n.resultShape
	}
	return out
}

// ExecuteProcess runs the tree once for one scan task. Input-plugin nodes
// (those with a nil parent) receive frameIndex as their task argument;
// every other node receives its parent's (results, kws). By default only
// leaves and nodes with KeepResults=true retain Results/ResultKWs after
// the call; forceStoreResults disables this pruning tree-wide.
//
// Returns node_id -> Dataset for every node that retained its result.
func (t *Tree) ExecuteProcess(frameIndex int, forceStoreResults bool) (map[int]*dataset.Dataset, error) {
	if t.root == nil {
		return nil, pderrors.NewFrameConfigError("tree has no root node")
	}
	out := make(map[int]*dataset.Dataset)
	var execErr error
	t.walkDepthFirst(func(n *Node) {
		if execErr != nil {
			return
		}
		var task any = frameIndex
		var kw map[string]any
		if n.parent != nil {
			task = n.parent.results
			kw = n.parent.resultKWs
		}
		if err := n.plugin.PreExecute(); err != nil {
			execErr = fmt.Errorf("node %d (%s) pre_execute: %w", n.id, n.plugin.Name(), err)
			return
		}
		result, outKW, err := n.plugin.Execute(task, kw)
		if err != nil {
			execErr = fmt.Errorf("node %d (%s) execute: %w", n.id, n.plugin.Name(), err)
			return
		}
		// Every node keeps its results through the walk, even ones that
		// won't be reported, so a child visited later in this same
		// depth-first pass still finds its parent's real result rather
		// than a pruned nil.
		n.results = result
		n.resultKWs = outKW
		if forceStoreResults || n.IsLeaf() || n.KeepResults {
			out[n.id] = result
		}
	})
	if execErr != nil {
		return nil, execErr
	}
	// Prune non-result-bearing nodes only now that every node in the tree
	// has executed and every child has had its chance to read its
	// parent's results.
	t.walkDepthFirst(func(n *Node) {
		if forceStoreResults || n.IsLeaf() || n.KeepResults {
			return
		}
		n.results = nil
		n.resultKWs = nil
	})
	return out, nil
}

// Hash computes the tree's structural hash: the combined hash of every
// node's (node_id, parent_id, plugin_class_fqname, sorted parameter
// values). Any mutation to the tree's structure or a plugin's parameters
// changes it, which callers use to invalidate caches keyed on tree
// identity.
func (t *Tree) Hash() ([]byte, error) {
	var ids []int
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	h, err := newHasher()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		n := t.byID[id]
		parentID := -1
		if n.parent != nil {
			parentID = n.parent.id
		}
		h.writeString(fmt.Sprintf("%d|%d|%s", n.id, parentID, n.plugin.Name()))
		keys := n.plugin.Params().Keys()
		sort.Strings(keys)
		for _, k := range keys {
			h.writeString(fmt.Sprintf("%s=%v", k, n.plugin.Params().Value(k)))
		}
	}
	return h.sum(), nil
}
