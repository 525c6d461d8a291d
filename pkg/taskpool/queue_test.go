package taskpool

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/taskpool/internal/testutil"
)

func newTestTask(id string) *task {
	return &task{
		id:          id,
		submittedAt: time.Now(),
		handle:      newHandle(id, time.Now()),
	}
}

func TestQueueFIFO(t *testing.T) {
	q := newTaskQueue(10)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		testutil.AssertNoError(t, q.enqueue(ctx, newTestTask(fmt.Sprintf("task-%d", i))))
	}

	for i := 0; i < 10; i++ {
		tk, err := q.dequeue()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, tk.id, fmt.Sprintf("task-%d", i))
	}
}

func TestQueueBlockingEnqueue(t *testing.T) {
	q := newTaskQueue(1)
	ctx := context.Background()

	testutil.AssertNoError(t, q.enqueue(ctx, newTestTask("first")))

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- q.enqueue(ctx, newTestTask("second"))
	}()

	// The second enqueue must block while the buffer is at capacity.
	select {
	case err := <-enqueued:
		t.Fatalf("enqueue returned %v before a slot freed", err)
	case <-time.After(50 * time.Millisecond):
	}

	_, err := q.dequeue()
	testutil.AssertNoError(t, err)

	select {
	case err := <-enqueued:
		testutil.AssertNoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("enqueue still blocked after a slot freed")
	}
}

func TestQueueTryEnqueueFull(t *testing.T) {
	q := newTaskQueue(2)

	testutil.AssertNoError(t, q.tryEnqueue(newTestTask("a")))
	testutil.AssertNoError(t, q.tryEnqueue(newTestTask("b")))
	testutil.AssertErrorIs(t, q.tryEnqueue(newTestTask("c")), ErrQueueFull)

	_, err := q.dequeue()
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, q.tryEnqueue(newTestTask("c")))
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := newTaskQueue(5)
	q.close()

	// Closed beats available space.
	testutil.AssertErrorIs(t, q.enqueue(context.Background(), newTestTask("late")), ErrQueueClosed)
	testutil.AssertErrorIs(t, q.tryEnqueue(newTestTask("late")), ErrQueueClosed)
}

func TestQueueCloseWakesBlockedProducer(t *testing.T) {
	q := newTaskQueue(1)
	testutil.AssertNoError(t, q.tryEnqueue(newTestTask("fill")))

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- q.enqueue(context.Background(), newTestTask("blocked"))
	}()

	time.Sleep(20 * time.Millisecond)
	q.close()

	select {
	case err := <-enqueued:
		testutil.AssertErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked producer not woken by close")
	}
}

func TestQueueCloseWakesBlockedConsumer(t *testing.T) {
	q := newTaskQueue(1)

	dequeued := make(chan error, 1)
	go func() {
		_, err := q.dequeue()
		dequeued <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.close()

	select {
	case err := <-dequeued:
		testutil.AssertErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked consumer not woken by close")
	}
}

func TestQueueDrainsBufferedAfterClose(t *testing.T) {
	q := newTaskQueue(5)
	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, q.tryEnqueue(newTestTask(fmt.Sprintf("task-%d", i))))
	}

	q.close()

	// close alone drops nothing; buffered tasks come out in order first.
	for i := 0; i < 3; i++ {
		tk, err := q.dequeue()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, tk.id, fmt.Sprintf("task-%d", i))
	}

	_, err := q.dequeue()
	testutil.AssertErrorIs(t, err, ErrQueueClosed)
}

func TestQueueDrainRemovesRemaining(t *testing.T) {
	q := newTaskQueue(5)
	for i := 0; i < 4; i++ {
		testutil.AssertNoError(t, q.tryEnqueue(newTestTask(fmt.Sprintf("task-%d", i))))
	}

	q.close()
	removed := q.drain()

	testutil.AssertEqual(t, len(removed), 4)
	testutil.AssertEqual(t, q.len(), 0)
	for i, tk := range removed {
		testutil.AssertEqual(t, tk.id, fmt.Sprintf("task-%d", i))
	}

	_, err := q.dequeue()
	testutil.AssertErrorIs(t, err, ErrQueueClosed)
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := newTaskQueue(1)
	q.close()
	q.close()

	_, err := q.dequeue()
	testutil.AssertErrorIs(t, err, ErrQueueClosed)
}

func TestQueueEnqueueContextCancelled(t *testing.T) {
	q := newTaskQueue(1)
	testutil.AssertNoError(t, q.tryEnqueue(newTestTask("fill")))

	ctx, cancel := context.WithCancel(context.Background())

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- q.enqueue(ctx, newTestTask("blocked"))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-enqueued:
		testutil.AssertErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("blocked producer not woken by context cancellation")
	}

	// The queue itself stays usable.
	testutil.AssertEqual(t, q.len(), 1)
}

func TestQueueConcurrentProducersConsumers(t *testing.T) {
	q := newTaskQueue(4)
	const total = 200

	var wg sync.WaitGroup
	seen := make(chan string, total)

	for c := 0; c < 3; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				tk, err := q.dequeue()
				if err != nil {
					return
				}
				seen <- tk.id
			}
		}()
	}

	ctx := context.Background()
	for i := 0; i < total; i++ {
		testutil.AssertNoError(t, q.enqueue(ctx, newTestTask(fmt.Sprintf("task-%d", i))))
	}

	testutil.Eventually(t, func() bool { return len(seen) == total }, testutil.TestTimeout, "all tasks dequeued")
	q.close()
	wg.Wait()

	unique := make(map[string]bool, total)
	close(seen)
	for id := range seen {
		if unique[id] {
			t.Fatalf("task %s dequeued twice", id)
		}
		unique[id] = true
	}
	testutil.AssertEqual(t, len(unique), total)
}
