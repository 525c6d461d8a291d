/*
Package taskpool provides a bounded task-scheduling core: a fixed set of
workers executing submitted tasks from a bounded FIFO queue, with per-task
completion handles, failure isolation, and deterministic shutdown.

A pool manages a fixed number of worker goroutines created once at
construction. The bounded queue between submitters and workers is the
system's admission-control point: once it fills, Submit blocks the caller
(backpressure) and TrySubmit rejects with ErrQueueFull.

Basic usage:

	pool, err := taskpool.New(4, 100) // 4 workers, queue capacity 100
	if err != nil {
		log.Fatal(err)
	}

	handle, err := pool.Submit(taskpool.TaskFunc(func(ctx context.Context) (any, error) {
		return computeSomething(), nil
	}))
	if err != nil {
		log.Printf("failed to submit: %v", err)
	}

	value, err := handle.Result()
	if err != nil {
		log.Printf("task failed: %v", err)
	}

	pool.Shutdown(true) // finish what's queued, accept nothing new
	pool.Wait()         // block until every worker has stopped

Completion Handles:

Every accepted task gets a Handle, a one-shot carrier settled exactly once
by the worker that ran the task. Handles may be read by any number of
observers or ignored entirely; an unread handle is garbage-collected like
any other value (fire-and-forget mode).

Failure Isolation:

A task's error, or panic, is recorded on its handle and never terminates
the worker's loop or affects other tasks. The pool stays Running; later
tasks execute normally.

Shutdown Semantics:

Shutdown(drain bool) is idempotent and stops admission immediately. With
drain=true the workers finish every buffered task before stopping; with
drain=false unclaimed buffered tasks settle their handles with
ErrTaskCancelled. A task already executing is never interrupted; cancel
long-running task bodies cooperatively through the context passed to
SubmitWithContext. Wait blocks until every worker has stopped and then
marks the pool Terminated.

Observability:

The pool emits events (task accepted, task completed or failed, task
cancelled, state transitions) to an optional Observer. NewLogObserver binds
events to a slog logger; NewMetricsObserver binds them to the Prometheus
registry in pkg/metrics. Combine observers with MultiObserver.
*/
package taskpool
