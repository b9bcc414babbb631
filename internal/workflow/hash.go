package workflow

import "golang.org/x/crypto/blake2b"

// hasher accumulates tree structure into a single blake2b digest.
type hasher struct {
	h interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

func newHasher() (*hasher, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	return &hasher{h: h}, nil
}

func (h *hasher) writeString(s string) {
	h.h.Write([]byte(s))
	h.h.Write([]byte{0})
}

func (h *hasher) sum() []byte {
	return h.h.Sum(nil)
}
