package taskpool

import (
	"context"
	"sync"
	"time"
)

// Handle is the one-shot completion carrier for a single submitted task.
// It is written exactly once, by the worker that executed the task (or by
// the pool when the task is discarded during shutdown), and may be read by
// any number of observers. The read path needs no lock: value and err are
// published before done is closed.
type Handle struct {
	taskID      string
	submittedAt time.Time

	done chan struct{}
	once sync.Once

	value any
	err   error
}

func newHandle(taskID string, submittedAt time.Time) *Handle {
	return &Handle{
		taskID:      taskID,
		submittedAt: submittedAt,
		done:        make(chan struct{}),
	}
}

// TaskID returns the identifier of the task this handle belongs to.
func (h *Handle) TaskID() string {
	return h.taskID
}

// SubmittedAt returns the time the task was submitted.
func (h *Handle) SubmittedAt() time.Time {
	return h.submittedAt
}

// Done returns a channel that is closed when the task's outcome is settled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the task settles and returns its output and error.
func (h *Handle) Result() (any, error) {
	<-h.done
	return h.value, h.err
}

// Wait blocks until the task settles or ctx is cancelled. A context error
// means the caller gave up waiting; the task itself may still complete.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the settled error, or nil if the task has not settled yet or
// completed successfully. Use Done to distinguish the two.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// settle publishes the outcome. Subsequent calls are no-ops.
func (h *Handle) settle(value any, err error) {
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
	})
}
