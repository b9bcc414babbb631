package results

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// SourceHash combines the frozen scan's parameter values with the frozen
// tree's structural hash, letting a consumer detect whether a Store was
// built from stale scan/tree state.
func (s *Store) SourceHash() ([]byte, error) {
	treeHash, err := s.tree.Hash()
	if err != nil {
		return nil, err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write(treeHash)

	keys := s.scan.Params().Keys()
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v|", k, s.scan.Params().Value(k))
	}
	return h.Sum(nil), nil
}
