package worker

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorker wires a Controller's workerProc to an in-memory pipe pair so
// dispatch/result logic can be exercised without spawning a real process.
func fakeWorker(t *testing.T) (*workerProc, *frameReader, *frameWriter) {
	t.Helper()
	toWorker, fromController := io.Pipe()
	toController, fromWorker := io.Pipe()
	wp := &workerProc{stdin: newFrameWriter(fromController), stdout: newFrameReader(toController)}
	return wp, newFrameReader(toWorker), newFrameWriter(fromWorker)
}

func TestDispatchPendingSendsTaskToIdleWorker(t *testing.T) {
	c := New(1, nil)
	wp, workerSideReader, _ := fakeWorker(t)
	c.workers = []*workerProc{wp}
	c.total = 1

	done := make(chan taskPayload, 1)
	go func() {
		env, err := workerSideReader.read()
		require.NoError(t, err)
		var tp taskPayload
		require.NoError(t, unmarshalEnvelope(env, &tp))
		done <- tp
	}()

	c.AddTask(7)

	select {
	case tp := <-done:
		v, err := decodeTaskInt(tp.Task)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatched task")
	}
	assert.True(t, wp.busy)
}

func TestProgressReflectsCompletedOverTotal(t *testing.T) {
	c := New(1, nil)
	c.total = 4
	c.completed = 1
	assert.Equal(t, 0.25, c.Progress())
}

func TestFinalizeTasksSignalsFinishedWhenDrained(t *testing.T) {
	c := New(1, nil)
	wp, workerSideReader, _ := fakeWorker(t)
	c.workers = []*workerProc{wp}

	go func() {
		_, _ = workerSideReader.read() // drain the stop frame
	}()

	c.FinalizeTasks()

	select {
	case <-c.Bus().Finished:
	case <-time.After(time.Second):
		t.Fatal("expected finished signal when no tasks were ever added")
	}
}

func TestSuspendTimesOutWithTasksInFlight(t *testing.T) {
	c := New(1, nil)
	c.inFlight = 1
	err := c.Suspend()
	assert.Error(t, err)
	assert.Equal(t, StateSuspended, c.State())
}
