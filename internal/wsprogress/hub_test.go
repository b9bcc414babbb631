package wsprogress

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHubDeliversOnlyToSubscribedRun(t *testing.T) {
	hub := NewHub(zerolog.New(io.Discard))
	go hub.Run()

	clientA := &Client{hub: hub, send: make(chan *Event, 4), runID: "run-a"}
	clientB := &Client{hub: hub, send: make(chan *Event, 4), runID: "run-b"}
	hub.Register(clientA)
	hub.Register(clientB)

	// allow the register sends to land before broadcasting
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("run-a", NewEvent(EventProgress, "run-a"))

	select {
	case ev := <-clientA.send:
		assert.Equal(t, "run-a", ev.RunID)
	case <-time.After(time.Second):
		t.Fatal("expected event on clientA")
	}

	select {
	case <-clientB.send:
		t.Fatal("clientB should not have received run-a's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(zerolog.New(io.Discard))
	go hub.Run()

	c := &Client{hub: hub, send: make(chan *Event, 1), runID: "run-x"}
	hub.Register(c)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}
