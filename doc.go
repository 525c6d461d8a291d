/*
Package taskpool provides a bounded task-scheduling core for Go applications:
a fixed worker pool with backpressure, completion handles, and deterministic
shutdown.

Core (pkg/taskpool):
  - bounded FIFO task queue with blocking and rejecting admission
  - fixed worker set with per-task failure isolation
  - one-shot completion handles (value or error per task)
  - graceful and immediate shutdown, goroutine-leak free termination
  - event hooks for logging (slog) and metrics (Prometheus)

Scheduling (pkg/schedule):
  - deferred, interval, and cron-based submission into a pool

Example usage:

	import (
		"github.com/vnykmshr/taskpool/pkg/taskpool"
	)

	pool, _ := taskpool.New(4, 100) // 4 workers, queue capacity 100

	handle, _ := pool.Submit(taskpool.TaskFunc(func(ctx context.Context) (any, error) {
		return work(ctx)
	}))

	value, err := handle.Result()
	_ = value
	_ = err

	pool.Shutdown(true)
	pool.Wait()
*/
package taskpool
