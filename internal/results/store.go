// Package results implements pydidas's WorkflowResults store: the
// per-node_id composite assembly that collects one run's per-scan-point
// plugin outputs into dense N+M dimensional arrays, plus the metadata and
// persistence machinery built on top of it.
package results

import (
	"fmt"
	"sync"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/pderrors"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

// Store is the WorkflowResults object: once a run's Scan and Tree are
// frozen into it via New, its shapes/ndims/labels maps and composite
// allocations are immutable for the run's duration; only the composite
// contents mutate, and only from StoreResults.
type Store struct {
	mu sync.RWMutex

	scan *scancontext.Context
	tree *workflow.Tree

	composites   map[int]*dataset.Dataset
	shapes       map[int][]int
	ndims        map[int]int
	nodeLabels   map[int]string
	dataLabels   map[int]string
	pluginNames  map[int]string
	resultTitles map[int]string

	metadataComplete bool
}

// resultBearing reports whether a node retains its Results after
// Tree.ExecuteProcess (see workflow.Tree's pruning rule): leaves, or nodes
// explicitly flagged KeepResults.
func resultBearing(n *workflow.Node) bool {
	return n.IsLeaf() || n.KeepResults
}

// New freezes scan and tree (both already deep clones owned by this
// Store) into a Store, computing every result-bearing node's composite
// shape as scan.Shape() + node.ResultShape(). The tree must already have
// had PropagateShapesAndGlobalConfig called.
func New(scan *scancontext.Context, tree *workflow.Tree) (*Store, error) {
	s := &Store{
		scan:         scan,
		tree:         tree,
		composites:   make(map[int]*dataset.Dataset),
		shapes:       make(map[int][]int),
		ndims:        make(map[int]int),
		nodeLabels:   make(map[int]string),
		dataLabels:   make(map[int]string),
		pluginNames:  make(map[int]string),
		resultTitles: make(map[int]string),
	}
	if err := s.updateShapesFromScanAndWorkflow(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) updateShapesFromScanAndWorkflow() error {
	scanShape := s.scan.Shape()
	for _, n := range s.tree.AllNodes() {
		if !resultBearing(n) {
			continue
		}
		shape := append(append([]int(nil), scanShape...), n.ResultShape()...)
		composite := dataset.Zeros(shape)

		label := n.Plugin().Name()
		if l, ok := n.Plugin().Params().Values()["data_label"]; ok {
			if s, ok := l.(string); ok && s != "" {
				label = s
			}
		}

		s.shapes[n.ID()] = shape
		s.ndims[n.ID()] = len(shape)
		s.composites[n.ID()] = composite
		s.nodeLabels[n.ID()] = label
		s.dataLabels[n.ID()] = label
		s.pluginNames[n.ID()] = n.Plugin().Name()
		s.resultTitles[n.ID()] = fmt.Sprintf("%s (node #%03d)", label, n.ID())
	}
	return nil
}

// Shapes returns a snapshot of node_id -> composite shape.
func (s *Store) Shapes() map[int][]int { return copyIntSliceMap(s.shapes) }

// ResultTitles returns a snapshot of node_id -> "{label} (node #{id:03d})".
func (s *Store) ResultTitles() map[int]string { return copyStringMap(s.resultTitles) }

// NodeIDs returns the result-bearing node ids this Store tracks.
func (s *Store) NodeIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.composites))
	for id := range s.composites {
		out = append(out, id)
	}
	return out
}

// StoreResults assigns {node_id: Dataset} into each composite at the scan
// position computed from frameIndex, and on the first call populates
// every composite's axis metadata from the scan and plugin-declared axes.
func (s *Store) StoreResults(frameIndex int, results map[int]*dataset.Dataset) error {
	pos, err := s.scan.GetFramePositionInScan(frameIndex)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for nodeID, d := range results {
		composite, ok := s.composites[nodeID]
		if !ok {
			return pderrors.NewFrameConfigError(fmt.Sprintf("node %d is not a result-bearing node of this store", nodeID))
		}
		if err := assignAtScanPosition(composite, pos, d); err != nil {
			return fmt.Errorf("node %d: %w", nodeID, err)
		}
	}

	if !s.metadataComplete {
		s.updateCompositeMetadata(results)
		s.metadataComplete = true
	}
	return nil
}

// updateCompositeMetadata copies each result node's plugin-declared axis
// labels/units/ranges into the composite at axis (pos_dim + scan.ndim),
// and prepends the scan's own labels/units/ranges to the leading
// scan.ndim axes. Invoked once, by the first StoreResults call.
func (s *Store) updateCompositeMetadata(results map[int]*dataset.Dataset) {
	ndim := s.scan.NDim()
	for d := 0; d < ndim; d++ {
		rng, _ := s.scan.GetRangeForDim(d)
		label := s.scan.Params().Value(fmt.Sprintf("scan_dim%d_label", d))
		unit := s.scan.Params().Value(fmt.Sprintf("scan_dim%d_unit", d))
		for _, composite := range s.composites {
			composite.SetAxisLabel(d, asString(label))
			composite.SetAxisUnit(d, asString(unit))
			_ = composite.SetAxisRange(d, rng)
		}
	}

	for nodeID, d := range results {
		composite, ok := s.composites[nodeID]
		if !ok {
			continue
		}
		for axis := 0; axis < d.Ndim(); axis++ {
			compositeAxis := axis + ndim
			composite.SetAxisLabel(compositeAxis, d.AxisLabel(axis))
			composite.SetAxisUnit(compositeAxis, d.AxisUnit(axis))
			if rng := d.AxisRange(axis); rng != nil {
				_ = composite.SetAxisRange(compositeAxis, rng)
			}
		}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// assignAtScanPosition broadcasts d into composite's trailing dimensions
// at the leading index pos.
func assignAtScanPosition(composite *dataset.Dataset, pos []int, d *dataset.Dataset) error {
	trailingShape := composite.Shape()[len(pos):]
	if len(d.Shape()) != len(trailingShape) {
		return pderrors.NewFrameConfigError(
			fmt.Sprintf("result shape %v does not match declared trailing shape %v", d.Shape(), trailingShape))
	}
	var walk func(prefix []int, trailingIdx []int) error
	walk = func(prefix []int, trailingIdx []int) error {
		if len(trailingIdx) == len(trailingShape) {
			v, err := d.At(trailingIdx...)
			if err != nil {
				return err
			}
			full := append(append([]int(nil), pos...), trailingIdx...)
			return composite.Set(v, full...)
		}
		axis := len(trailingIdx)
		for i := 0; i < trailingShape[axis]; i++ {
			if err := walk(prefix, append(append([]int(nil), trailingIdx...), i)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nil, nil)
}

func copyIntSliceMap(m map[int][]int) map[int][]int {
	out := make(map[int][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func copyStringMap(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
