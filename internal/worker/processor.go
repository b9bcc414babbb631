package worker

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pydidas/pydidas-go/internal/app"
	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/pdlog"
)

// RunProcessor is the App-processor function: the entire body executed
// inside a worker process after re-exec. It blocks reading r until the
// controller sends a stop task or the pipe closes (the controller process
// exited). stdin/stdout are used verbatim by callers; RunProcessor owns
// framing, not transport.
func RunProcessor(r io.Reader, w io.Writer) error {
	log := pdlog.For("worker")
	fr := newFrameReader(r)
	fw := newFrameWriter(w)

	env, err := fr.read()
	if err != nil {
		return fmt.Errorf("reading init frame: %w", err)
	}
	if env.Kind != kindInit {
		return fmt.Errorf("expected init frame, got %s", env.Kind)
	}
	var initMsg initPayload
	if err := msgpack.Unmarshal(env.Payload, &initMsg); err != nil {
		return fmt.Errorf("decoding init frame: %w", err)
	}
	a, err := app.DecodeKind(initMsg.AppKind, initMsg.AppData)
	if err != nil {
		writeErr(fw, err)
		return err
	}
	if err := a.MultiprocessingPreRun(); err != nil {
		writeErr(fw, err)
		return err
	}

	for {
		env, err := fr.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading frame: %w", err)
		}

		switch env.Kind {
		case kindStop:
			_ = fw.write(kindFinished, nil)
			return nil

		case kindTask:
			var tp taskPayload
			if err := msgpack.Unmarshal(env.Payload, &tp); err != nil {
				writeErr(fw, err)
				continue
			}
			if tp.Stop {
				_ = fw.write(kindFinished, nil)
				return nil
			}
			taskVal, err := decodeTaskInt(tp.Task)
			if err != nil {
				writeErr(fw, err)
				continue
			}
			if err := a.MultiprocessingPreCycle(taskVal); err != nil {
				writeErr(fw, err)
				continue
			}
			for !a.MultiprocessingCarryOn() {
				time.Sleep(5 * time.Millisecond)
			}
			result, err := a.MultiprocessingFunc(taskVal)
			if err != nil {
				log.Warn().Err(err).Int("task", taskVal).Msg("task failed")
				writeErr(fw, err)
				continue
			}
			resultMap, ok := result.(map[int]*dataset.Dataset)
			if !ok {
				writeErr(fw, fmt.Errorf("unexpected result type %T", result))
				continue
			}
			encoded, err := encodeResultMap(resultMap)
			if err != nil {
				writeErr(fw, err)
				continue
			}
			if err := fw.write(kindResult, resultPayload{Task: tp.Task, Result: encoded}); err != nil {
				return err
			}
		}
	}
}

func writeErr(fw *frameWriter, err error) {
	_ = fw.write(kindError, errorPayload{Message: err.Error()})
}
