package taskpool

import (
	"context"
	"sync"
)

// taskQueue is the bounded FIFO buffer between submitters and workers.
// Access is serialized by a single mutex with two condition variables:
// notFull for producers and notEmpty for consumers. A lock-free ring would
// trade these condition waits for busy-retry on dequeue; the blocking form
// is kept so that idle workers park instead of spinning.
type taskQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	buf      []*task
	head     int
	count    int
	capacity int
	closed   bool
}

func newTaskQueue(capacity int) *taskQueue {
	q := &taskQueue{
		buf:      make([]*task, capacity),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// enqueue appends t, blocking while the buffer is at capacity. It returns
// ErrQueueClosed immediately once close has been called, even if space is
// available, and the context error if ctx is cancelled while waiting.
func (q *taskQueue) enqueue(ctx context.Context, t *task) error {
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			q.mu.Lock()
			q.notFull.Broadcast()
			q.mu.Unlock()
		})
		defer stop()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == q.capacity && !q.closed && ctx.Err() == nil {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	q.push(t)
	q.notEmpty.Signal()
	return nil
}

// tryEnqueue appends t without blocking, returning ErrQueueFull at capacity.
func (q *taskQueue) tryEnqueue(t *task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.count == q.capacity {
		return ErrQueueFull
	}

	q.push(t)
	q.notEmpty.Signal()
	return nil
}

// dequeue removes the oldest task, blocking while the buffer is empty and
// the queue is open. After close, remaining buffered tasks are still handed
// out in order; once drained, all pending and future calls return
// ErrQueueClosed without blocking.
func (q *taskQueue) dequeue() (*task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.count == 0 {
		return nil, ErrQueueClosed
	}

	t := q.pop()
	q.notFull.Signal()
	return t, nil
}

// close marks the queue closed and wakes all waiters so they re-evaluate
// their exit conditions. Idempotent. Buffered tasks are not dropped here;
// discarding is the pool's explicit decision via drain.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// drain removes and returns all buffered tasks. Must be called after close;
// the caller owns settling the returned tasks' handles.
func (q *taskQueue) drain() []*task {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := make([]*task, 0, q.count)
	for q.count > 0 {
		removed = append(removed, q.pop())
	}
	return removed
}

// len returns the current number of buffered tasks.
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// push and pop assume q.mu is held.

func (q *taskQueue) push(t *task) {
	q.buf[(q.head+q.count)%q.capacity] = t
	q.count++
}

func (q *taskQueue) pop() *task {
	t := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % q.capacity
	q.count--
	return t
}
