package taskpool

import (
	"log/slog"
	"time"
)

// EventKind identifies the kind of pool event.
type EventKind string

const (
	// EventTaskAccepted is emitted when a task passes admission and is queued.
	EventTaskAccepted EventKind = "task_accepted"

	// EventTaskCompleted is emitted when a task's action returns without error.
	EventTaskCompleted EventKind = "task_completed"

	// EventTaskFailed is emitted when a task's action returns an error or panics.
	EventTaskFailed EventKind = "task_failed"

	// EventTaskCancelled is emitted for a buffered task discarded during a
	// non-draining shutdown.
	EventTaskCancelled EventKind = "task_cancelled"

	// EventStateChange is emitted on every pool lifecycle transition.
	EventStateChange EventKind = "state_change"
)

// Event describes a single observable pool occurrence. TaskID is empty for
// state-change events; State is meaningful only for state-change events;
// Duration is set on completion and failure events.
type Event struct {
	TaskID   string
	Kind     EventKind
	Time     time.Time
	Err      error
	State    State
	Duration time.Duration
}

// Observer consumes pool events. Observers are called synchronously from
// pool goroutines and must not block.
type Observer func(Event)

// MultiObserver fans an event out to several observers in order.
func MultiObserver(observers ...Observer) Observer {
	return func(e Event) {
		for _, o := range observers {
			if o != nil {
				o(e)
			}
		}
	}
}

// NewLogObserver returns an Observer that records events on the given
// structured logger. A nil logger uses slog.Default.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		attrs := []any{
			slog.String("event", string(e.Kind)),
			slog.Time("time", e.Time),
		}
		if e.TaskID != "" {
			attrs = append(attrs, slog.String("task_id", e.TaskID))
		}
		if e.Kind == EventStateChange {
			attrs = append(attrs, slog.String("state", e.State.String()))
		}
		if e.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", e.Duration))
		}
		if e.Err != nil {
			attrs = append(attrs, slog.String("error", e.Err.Error()))
			logger.Warn("taskpool event", attrs...)
			return
		}
		logger.Info("taskpool event", attrs...)
	}
}

// emit delivers an event to the configured observer, if any.
func (p *pool) emit(e Event) {
	if p.config.Observer != nil {
		p.config.Observer(e)
	}
}

// transition moves the pool to the next lifecycle state and reports it.
func (p *pool) transition(next State) {
	p.state.Store(int32(next))
	p.emit(Event{
		Kind:  EventStateChange,
		Time:  time.Now(),
		State: next,
	})
}
