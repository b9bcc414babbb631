// Package worker implements pydidas's multiprocessing layer: real
// OS-process workers driven by a WorkerController, the AppRunner
// specialisation for App-driven runs, and the processor loop that runs
// inside each worker process. Workers never share memory with the
// controller or each other; all communication crosses length-prefixed
// msgpack frames over the worker's stdin/stdout pipes, matching the
// "no shared mutable objects across processes" invariant.
package worker

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// frameKind tags the payload carried by a wire frame.
type frameKind string

const (
	kindInit     frameKind = "init"
	kindTask     frameKind = "task"
	kindResult   frameKind = "result"
	kindStop     frameKind = "stop"
	kindFinished frameKind = "finished"
	kindError    frameKind = "error"
)

// envelope is the wire frame: Kind selects how Payload is interpreted by
// the receiver, keeping the length-prefix layer agnostic of message
// semantics.
type envelope struct {
	Kind    frameKind `msgpack:"kind"`
	Payload []byte    `msgpack:"payload"`
}

// initPayload seeds a freshly spawned worker with the app it must
// reconstruct.
type initPayload struct {
	AppKind string `msgpack:"app_kind"`
	AppData []byte `msgpack:"app_data"`
}

// taskPayload carries one unit of work to a worker, or signals shutdown
// when Stop is true (mirroring the original's "task is None" sentinel).
type taskPayload struct {
	Stop bool   `msgpack:"stop"`
	Task []byte `msgpack:"task"`
}

// resultPayload carries one worker's completed (task, result) pair back to
// the controller.
type resultPayload struct {
	Task   []byte `msgpack:"task"`
	Result []byte `msgpack:"result"`
}

// errorPayload reports a worker-side failure; the controller treats it as
// the worker's current task aborting without retry.
type errorPayload struct {
	Message string `msgpack:"message"`
}

// frameWriter serializes envelopes as [4-byte big-endian length][msgpack
// bytes], safe for concurrent use by multiple goroutines writing to the
// same pipe.
type frameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newFrameWriter(w io.Writer) *frameWriter { return &frameWriter{w: w} }

func (fw *frameWriter) write(kind frameKind, payload any) error {
	var raw []byte
	var err error
	if payload != nil {
		raw, err = msgpack.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", kind, err)
		}
	}
	body, err := msgpack.Marshal(envelope{Kind: kind, Payload: raw})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := fw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = fw.w.Write(body)
	return err
}

// frameReader deserializes envelopes written by a frameWriter.
type frameReader struct {
	r *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader { return &frameReader{r: bufio.NewReader(r)} }

func (fr *frameReader) read() (envelope, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(fr.r, lenBuf[:]); err != nil {
		return envelope{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(fr.r, body); err != nil {
		return envelope{}, err
	}
	var env envelope
	if err := msgpack.Unmarshal(body, &env); err != nil {
		return envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
