package taskpool

import (
	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// NewMetricsObserver returns an Observer that records pool events on the
// given Prometheus registry. A nil registry uses metrics.DefaultRegistry.
// Combine with other observers via MultiObserver.
func NewMetricsObserver(registry *metrics.Registry, poolName string) Observer {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}

	return func(e Event) {
		switch e.Kind {
		case EventTaskAccepted:
			registry.TasksAccepted.WithLabelValues(poolName).Inc()
		case EventTaskCompleted:
			registry.TasksCompleted.WithLabelValues(poolName).Inc()
			registry.TaskExecutionDuration.WithLabelValues(poolName).Observe(e.Duration.Seconds())
		case EventTaskFailed:
			registry.TasksFailed.WithLabelValues(poolName).Inc()
			registry.TaskExecutionDuration.WithLabelValues(poolName).Observe(e.Duration.Seconds())
		case EventTaskCancelled:
			registry.TasksCancelled.WithLabelValues(poolName).Inc()
		case EventStateChange:
			registry.StateTransitions.WithLabelValues(poolName, e.State.String()).Inc()
		}
	}
}

// UpdatePoolGauges refreshes the point-in-time gauges for p. Call it
// periodically or on scrape; counters are maintained by the event observer
// and need no refresh.
func UpdatePoolGauges(registry *metrics.Registry, poolName string, p Pool) {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}

	registry.PoolSize.WithLabelValues(poolName).Set(float64(p.Size()))
	registry.QueueDepth.WithLabelValues(poolName).Set(float64(p.QueueDepth()))
	registry.InFlight.WithLabelValues(poolName).Set(float64(p.InFlight()))
	registry.ActiveWorkers.WithLabelValues(poolName).Set(float64(p.ActiveWorkers()))
}
