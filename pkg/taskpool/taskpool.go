package taskpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	commonerrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context and returns its output.
	// The context is the caller's cooperative cancellation token; tasks must
	// tolerate running to completion when the context is never cancelled.
	Execute(ctx context.Context) (any, error)
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) (any, error)

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) (any, error) {
	return f(ctx)
}

// Sentinel errors returned by the pool. They wrap the shared classification
// errors so callers can use errors.Is against either level.
var (
	// ErrInvalidConfiguration is returned by New for non-positive worker
	// count or queue capacity.
	ErrInvalidConfiguration = fmt.Errorf("taskpool: %w", commonerrors.ErrInvalidConfiguration)

	// ErrPoolNotAccepting is returned by Submit once shutdown has begun.
	ErrPoolNotAccepting = fmt.Errorf("taskpool: pool not accepting tasks: %w", commonerrors.ErrClosed)

	// ErrQueueFull is returned by TrySubmit when the queue is at capacity.
	ErrQueueFull = fmt.Errorf("taskpool: queue full: %w", commonerrors.ErrCapacityExceeded)

	// ErrQueueClosed is the internal admission boundary: enqueue after close.
	// Submit translates it to ErrPoolNotAccepting before it reaches callers.
	ErrQueueClosed = fmt.Errorf("taskpool: queue closed: %w", commonerrors.ErrClosed)

	// ErrTaskCancelled settles the handle of a task discarded during a
	// non-draining shutdown. Never set for a task that began executing.
	ErrTaskCancelled = fmt.Errorf("taskpool: task cancelled: %w", commonerrors.ErrCancelled)
)

// State is the pool lifecycle state. Transitions are monotonic:
// Created -> Running -> ShuttingDown -> Terminated.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateShuttingDown
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Pool represents a bounded worker pool that executes submitted tasks.
type Pool interface {
	// Submit adds a task to the pool for execution, blocking while the
	// queue is full. Returns the task's completion handle.
	Submit(task Task) (*Handle, error)

	// SubmitWithContext behaves like Submit. The context bounds the
	// blocking enqueue and is later passed to the task's Execute method.
	SubmitWithContext(ctx context.Context, task Task) (*Handle, error)

	// TrySubmit adds a task without blocking; it returns ErrQueueFull
	// when the queue is at capacity.
	TrySubmit(task Task) (*Handle, error)

	// Shutdown stops admission and closes the queue. With drain=true,
	// already-buffered tasks are still executed; with drain=false they are
	// discarded and their handles settle with ErrTaskCancelled. A task
	// already executing is never interrupted. Idempotent.
	Shutdown(drain bool)

	// Wait blocks until every worker has stopped, then marks the pool
	// Terminated. Safe to call concurrently from multiple observers.
	Wait()

	// State returns the current lifecycle state.
	State() State

	// Size returns the number of workers in the pool.
	Size() int

	// QueueDepth returns the current number of buffered tasks.
	QueueDepth() int

	// InFlight returns the number of accepted tasks whose handles have
	// not settled yet.
	InFlight() int

	// ActiveWorkers returns the number of workers currently executing a task.
	ActiveWorkers() int
}

// Config holds configuration options for creating a pool.
type Config struct {
	// WorkerCount is the number of workers. Must be greater than 0.
	WorkerCount int

	// QueueCapacity is the maximum number of buffered tasks. Must be
	// greater than 0; submission blocks (or TrySubmit rejects) at capacity.
	QueueCapacity int

	// Observer receives pool events (task accepted, task completed,
	// state transitions). Nil disables event emission.
	Observer Observer
}

// pool implements the Pool interface.
type pool struct {
	config Config

	queue   *taskQueue
	workers []*worker

	state    atomic.Int32
	inFlight atomic.Int64

	shutdownOnce  sync.Once
	terminateOnce sync.Once
	workerWg      sync.WaitGroup
}

// New creates a pool with the given number of workers and queue capacity.
// Workers are spawned immediately and the pool starts in the Running state.
func New(workerCount, queueCapacity int) (Pool, error) {
	return NewWithConfig(Config{
		WorkerCount:   workerCount,
		QueueCapacity: queueCapacity,
	})
}

// NewWithConfig creates a pool with the specified configuration.
func NewWithConfig(config Config) (Pool, error) {
	if config.WorkerCount <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfiguration, config.WorkerCount)
	}
	if config.QueueCapacity <= 0 {
		return nil, fmt.Errorf("%w: queue capacity must be positive, got %d", ErrInvalidConfiguration, config.QueueCapacity)
	}

	p := &pool{
		config: config,
		queue:  newTaskQueue(config.QueueCapacity),
	}
	p.state.Store(int32(StateCreated))
	p.transition(StateRunning)

	p.workers = make([]*worker, config.WorkerCount)
	for i := range p.workers {
		p.workers[i] = &worker{id: i, pool: p}
		p.workerWg.Add(1)
		go p.workers[i].run()
	}

	return p, nil
}
