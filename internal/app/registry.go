package app

import "fmt"

// Serializable is implemented by apps that can cross the worker-process
// boundary: MarshalForWorker produces the immutable (class, params,
// config) tuple the original passes to its worker processes, encoded as
// the concrete app sees fit.
type Serializable interface {
	App
	Kind() string
	MarshalForWorker() ([]byte, error)
}

// Decoder reconstructs a Serializable App of a given kind from the bytes
// produced by MarshalForWorker, run inside the worker process.
type Decoder func(data []byte) (App, error)

var decoders = make(map[string]Decoder)

// RegisterKind binds a worker-reconstruction Decoder to kind. Concrete
// Serializable app types call this from an init() function.
func RegisterKind(kind string, decode Decoder) {
	decoders[kind] = decode
}

// DecodeKind reconstructs an App of the given kind from data.
func DecodeKind(kind string, data []byte) (App, error) {
	d, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("no app decoder registered for kind %q", kind)
	}
	return d(data)
}
