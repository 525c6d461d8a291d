package taskpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// WorkerState is the lifecycle state of a single worker.
type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerRunning
	WorkerStopped
)

// String returns a human-readable worker state name.
func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// worker is a single execution context. It loops dequeue -> execute ->
// report until the queue reports closed-and-empty, then stops for good.
type worker struct {
	id    int
	pool  *pool
	state atomic.Int32
}

func (w *worker) workerState() WorkerState {
	return WorkerState(w.state.Load())
}

// run is the main loop for a worker. Exactly one task is in flight per
// worker at any instant; Stopped is terminal.
func (w *worker) run() {
	defer w.pool.workerWg.Done()
	defer w.state.Store(int32(WorkerStopped))

	for {
		tk, err := w.pool.queue.dequeue()
		if err != nil {
			return
		}

		w.state.Store(int32(WorkerRunning))
		w.execute(tk)
		w.state.Store(int32(WorkerIdle))
	}
}

// execute runs a single task, isolating failures at the worker boundary.
// Errors and panics settle the task's handle and never escape the loop.
func (w *worker) execute(tk *task) {
	start := time.Now()
	var (
		value any
		err   error
	)

	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("task panicked: %v\nstack trace:\n%s", r, debug.Stack())
		}

		tk.handle.settle(value, err)
		w.pool.inFlight.Add(-1)

		kind := EventTaskCompleted
		if err != nil {
			kind = EventTaskFailed
		}
		w.pool.emit(Event{
			TaskID:   tk.id,
			Kind:     kind,
			Time:     time.Now(),
			Err:      err,
			Duration: time.Since(start),
		})
	}()

	ctx := tk.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	value, err = tk.action.Execute(ctx)
}
