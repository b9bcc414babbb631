package worker

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sys/unix"

	"github.com/pydidas/pydidas-go/internal/app"
	"github.com/pydidas/pydidas-go/internal/pdlog"
	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// State is the controller's event-loop state machine.
type State int

const (
	StateIdle State = iota
	StateActive
	StateRunning
	StateDraining
	StateSuspended
	StateDead
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateSuspended:
		return "suspended"
	case StateDead:
		return "dead"
	default:
		return "idle"
	}
}

// workerProc is one spawned OS-process worker and the pipes to it.
type workerProc struct {
	cmd    *exec.Cmd
	stdin  *frameWriter
	stdout *frameReader
	pgid   int
	busy   bool
}

// Controller is pydidas's WorkerController, coordinating N real worker
// processes via task/result frames, never
// sharing memory across the process boundary. ReExecArgs names the
// command line that re-invokes this same binary in worker mode (e.g.
// []string{os.Args[0], "--pydidas-worker"}).
type Controller struct {
	mu sync.Mutex

	numWorkers int
	reExecArgs []string

	workers []*workerProc
	bus     *EventBus

	pending   []any // tasks not yet dispatched
	inFlight  int
	completed int
	total     int
	tasksDone bool // FinalizeTasks called: no more tasks will ever be added

	state   State
	stopped bool
}

// New builds a Controller that will spawn numWorkers processes by
// re-executing reExecArgs[0] with reExecArgs[1:] as arguments.
func New(numWorkers int, reExecArgs []string) *Controller {
	return &Controller{
		numWorkers: numWorkers,
		reExecArgs: reExecArgs,
		bus:        newEventBus(),
		state:      StateIdle,
	}
}

// Bus returns the controller's four-channel event bus.
func (c *Controller) Bus() *EventBus { return c.bus }

// State returns the controller's current event-loop state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns completed/total in [0,1], or 0 if total is unknown.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total == 0 {
		return 0
	}
	return float64(c.completed) / float64(c.total)
}

// Start spawns the worker processes and sends each an init frame carrying
// the serialized app. Each worker gets one goroutine that reads its frames;
// tasks are dispatched when they are added and whenever a worker reports
// back, with no separate dispatch-loop goroutine.
func (c *Controller) Start(a app.Serializable) error {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateSuspended {
		c.mu.Unlock()
		return pderrors.NewRuntimeError("controller is not idle")
	}
	c.state = StateRunning
	c.mu.Unlock()

	data, err := a.MarshalForWorker()
	if err != nil {
		return fmt.Errorf("serializing app for workers: %w", err)
	}

	for i := 0; i < c.numWorkers; i++ {
		wp, err := c.spawnWorker()
		if err != nil {
			return fmt.Errorf("spawning worker %d: %w", i, err)
		}
		if err := wp.stdin.write(kindInit, initPayload{AppKind: a.Kind(), AppData: data}); err != nil {
			return fmt.Errorf("sending init to worker %d: %w", i, err)
		}
		c.workers = append(c.workers, wp)
		go c.readResults(wp)
	}
	return nil
}

func (c *Controller) spawnWorker() (*workerProc, error) {
	cmd := exec.Command(c.reExecArgs[0], c.reExecArgs[1:]...)
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &workerProc{
		cmd:    cmd,
		stdin:  newFrameWriter(stdin),
		stdout: newFrameReader(stdout),
		pgid:   cmd.Process.Pid,
	}, nil
}

// readResults is the per-worker goroutine forwarding result/error/finished
// frames from one worker process into the controller's shared result
// channel.
func (c *Controller) readResults(wp *workerProc) {
	resultCh := make(chan envelope, 16)
	go func() {
		defer close(resultCh)
		for {
			env, err := wp.stdout.read()
			if err != nil {
				return
			}
			resultCh <- env
			if env.Kind == kindFinished {
				return
			}
		}
	}()
	for env := range resultCh {
		c.handleWorkerFrame(wp, env)
	}
}

func (c *Controller) handleWorkerFrame(wp *workerProc, env envelope) {
	switch env.Kind {
	case kindResult:
		var rp resultPayload
		if err := unmarshalEnvelope(env, &rp); err != nil {
			return
		}
		taskVal, _ := decodeTaskInt(rp.Task)
		resultMap, err := decodeResultMap(rp.Result)
		if err != nil {
			return
		}
		c.mu.Lock()
		c.inFlight--
		c.completed++
		progress := 0.0
		if c.total > 0 {
			progress = float64(c.completed) / float64(c.total)
		}
		wp.busy = false
		c.mu.Unlock()

		// Both sends block: sig_results must never drop a task's result
		// (spec invariant: emitted results == real tasks, none twice),
		// and a dropped terminal progress==1 would leave checkProgress
		// waiting forever for a value it will never see again.
		// AppRunner's pumpResults/checkProgress goroutines are the
		// channels' sole, continuously-draining consumers for the
		// duration of a run, so this never deadlocks in normal operation.
		c.bus.Results <- ResultEvent{Task: taskVal, Result: resultMap}
		c.bus.Progress <- progress
		c.dispatchPending()

	case kindError:
		var ep errorPayload
		_ = unmarshalEnvelope(env, &ep)
		pdlog.For("controller").Warn().Str("error", ep.Message).Msg("worker reported task error")
		c.mu.Lock()
		c.inFlight--
		wp.busy = false
		c.mu.Unlock()
		c.dispatchPending()

	case kindFinished:
		c.checkAllDone()
	}
}

func unmarshalEnvelope(env envelope, out any) error {
	return msgpack.Unmarshal(env.Payload, out)
}

// AddTask enqueues one task, dispatching it immediately if an idle worker
// is available.
func (c *Controller) AddTask(task any) {
	c.mu.Lock()
	c.pending = append(c.pending, task)
	c.total++
	c.mu.Unlock()
	c.dispatchPending()
}

// AddTasks enqueues many tasks at once.
func (c *Controller) AddTasks(tasks []any) {
	c.mu.Lock()
	c.pending = append(c.pending, tasks...)
	c.total += len(tasks)
	c.mu.Unlock()
	c.dispatchPending()
}

// FinalizeTasks marks that no further tasks will be added. If no task is
// pending or in flight at this point, the controller sends every worker a
// stop signal, transitions to draining and signals Finished. The same check
// runs when a worker reports finished, but not when a task result arrives:
// with tasks outstanding, the stop signal comes from elsewhere
// (AppRunner.checkProgress sends it once progress reaches 1).
func (c *Controller) FinalizeTasks() {
	c.mu.Lock()
	c.tasksDone = true
	c.mu.Unlock()
	c.checkAllDone()
}

func (c *Controller) dispatchPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSuspended {
		return
	}
	for _, wp := range c.workers {
		if len(c.pending) == 0 {
			break
		}
		if wp.busy {
			continue
		}
		task := c.pending[0]
		c.pending = c.pending[1:]
		encoded, err := encodeTask(task)
		if err != nil {
			continue
		}
		wp.busy = true
		c.inFlight++
		_ = wp.stdin.write(kindTask, taskPayload{Task: encoded})
	}
}

func (c *Controller) checkAllDone() {
	c.mu.Lock()
	done := c.tasksDone && len(c.pending) == 0 && c.inFlight == 0
	if done && c.state != StateDraining && c.state != StateDead {
		c.state = StateDraining
	}
	c.mu.Unlock()
	if done {
		c.SendStopSignal()
		select {
		case c.bus.Finished <- struct{}{}:
		default:
		}
	}
}

// SendStopSignal is best-effort: a task already executing inside
// MultiprocessingFunc runs to completion; workers exit their loop only
// after their current task (if any) finishes.
func (c *Controller) SendStopSignal() {
	c.mu.Lock()
	workers := append([]*workerProc(nil), c.workers...)
	c.mu.Unlock()
	for _, wp := range workers {
		_ = wp.stdin.write(kindStop, nil)
	}
}

// Suspend pauses dispatch, waiting up to 2s for in-flight tasks to clear.
// Returns a *pderrors.TimeoutError if the wait expires with tasks still
// in flight (the suspension still takes effect).
func (c *Controller) Suspend() error {
	c.mu.Lock()
	c.state = StateSuspended
	c.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		inFlight := c.inFlight
		c.mu.Unlock()
		if inFlight == 0 {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return pderrors.NewTimeoutError("suspend: active tasks did not clear within 2s")
}

// Restart resumes dispatch after Suspend.
func (c *Controller) Restart() error {
	c.mu.Lock()
	if c.state != StateSuspended {
		c.mu.Unlock()
		return pderrors.NewRuntimeError("controller is not suspended")
	}
	c.state = StateRunning
	c.mu.Unlock()
	c.dispatchPending()
	return nil
}

// RequestInterruption sends every worker the stop signal and marks the
// controller dead at once, without waiting for workers to exit or killing
// them (Stop does both); a dead controller is not restartable.
func (c *Controller) RequestInterruption() {
	c.mu.Lock()
	c.stopped = true
	c.state = StateDead
	c.mu.Unlock()
	c.SendStopSignal()
}

// Stop sends the stop signal to every worker and waits up to timeout
// (default 10s if zero) for every worker process to exit, killing any process
// group that does not exit in time. Returns a *pderrors.TimeoutError if
// the wait expires.
func (c *Controller) Stop(timeout time.Duration) error {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	c.SendStopSignal()

	done := make(chan struct{})
	go func() {
		for _, wp := range c.workers {
			_ = wp.cmd.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		c.mu.Lock()
		workers := append([]*workerProc(nil), c.workers...)
		c.mu.Unlock()
		for _, wp := range workers {
			_ = unix.Kill(-wp.pgid, syscall.SIGKILL)
		}
		c.mu.Lock()
		c.state = StateDead
		c.mu.Unlock()
		return pderrors.NewTimeoutError("stop: workers did not exit within budget")
	}

	c.mu.Lock()
	c.state = StateDead
	c.mu.Unlock()
	return nil
}
