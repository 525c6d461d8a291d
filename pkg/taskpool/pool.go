package taskpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// task is the queued unit of work: the caller's action plus the bookkeeping
// the pool attaches at admission. Immutable once submitted; owned by the
// queue until claimed by exactly one worker.
type task struct {
	id          string
	action      Task
	ctx         context.Context
	submittedAt time.Time
	handle      *Handle
}

// Submit adds a task to the pool for execution.
// The task will be executed with context.Background().
// Use SubmitWithContext to provide a cancellation token.
func (p *pool) Submit(t Task) (*Handle, error) {
	return p.SubmitWithContext(context.Background(), t)
}

// SubmitWithContext adds a task to the pool for execution with the given
// context. The context bounds the blocking enqueue (backpressure wait) and
// is passed to the task's Execute method as its cancellation token. The
// scheduler itself never force-kills a running task.
func (p *pool) SubmitWithContext(ctx context.Context, t Task) (*Handle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.submit(ctx, t, true)
}

// TrySubmit adds a task without blocking. At capacity it returns
// ErrQueueFull instead of waiting for a slot.
func (p *pool) TrySubmit(t Task) (*Handle, error) {
	return p.submit(context.Background(), t, false)
}

func (p *pool) submit(ctx context.Context, t Task, blocking bool) (*Handle, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: task cannot be nil", ErrInvalidConfiguration)
	}
	if s := p.State(); s != StateRunning {
		return nil, fmt.Errorf("%w (state %s)", ErrPoolNotAccepting, s)
	}

	tk := &task{
		id:          uuid.NewString(),
		action:      t,
		ctx:         ctx,
		submittedAt: time.Now(),
	}
	tk.handle = newHandle(tk.id, tk.submittedAt)

	p.inFlight.Add(1)

	var err error
	if blocking {
		err = p.queue.enqueue(ctx, tk)
	} else {
		err = p.queue.tryEnqueue(tk)
	}
	if err != nil {
		p.inFlight.Add(-1)
		if errors.Is(err, ErrQueueClosed) {
			// Shutdown began between the admission check and the enqueue.
			return nil, fmt.Errorf("%w (state %s)", ErrPoolNotAccepting, p.State())
		}
		return nil, err
	}

	p.emit(Event{
		TaskID: tk.id,
		Kind:   EventTaskAccepted,
		Time:   tk.submittedAt,
	})
	return tk.handle, nil
}

// Shutdown stops admission and closes the queue. The first call wins;
// repeat calls are no-ops regardless of the drain flag.
func (p *pool) Shutdown(drain bool) {
	p.shutdownOnce.Do(func() {
		p.transition(StateShuttingDown)
		p.queue.close()

		if drain {
			return
		}

		// Discard unclaimed buffered tasks. Tasks already claimed by a
		// worker run to completion; this core never aborts mid-execution.
		for _, tk := range p.queue.drain() {
			tk.handle.settle(nil, ErrTaskCancelled)
			p.inFlight.Add(-1)
			p.emit(Event{
				TaskID: tk.id,
				Kind:   EventTaskCancelled,
				Time:   time.Now(),
				Err:    ErrTaskCancelled,
			})
		}
	})
}

// Wait blocks until every worker has stopped, then marks the pool
// Terminated. Calling Wait from inside a task that must finish before
// workers can stop will self-deadlock; that is a caller responsibility.
func (p *pool) Wait() {
	p.workerWg.Wait()
	p.terminateOnce.Do(func() {
		p.transition(StateTerminated)
	})
}

// State returns the current lifecycle state.
func (p *pool) State() State {
	return State(p.state.Load())
}

// Size returns the number of workers in the pool.
func (p *pool) Size() int {
	return p.config.WorkerCount
}

// QueueDepth returns the current number of buffered tasks.
func (p *pool) QueueDepth() int {
	return p.queue.len()
}

// InFlight returns the number of accepted tasks that have not settled.
func (p *pool) InFlight() int {
	return int(p.inFlight.Load())
}

// ActiveWorkers returns the number of workers currently executing a task.
func (p *pool) ActiveWorkers() int {
	active := 0
	for _, w := range p.workers {
		if w.workerState() == WorkerRunning {
			active++
		}
	}
	return active
}
