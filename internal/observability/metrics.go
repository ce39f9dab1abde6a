package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "liveurl",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently running.",
		},
	)
	operationsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liveurl",
			Subsystem: "nav",
			Name:      "operations_total",
			Help:      "Navigation operations applied, by mode and stack discipline.",
		},
		[]string{"mode", "stack"},
	)
	messagesPassedThrough = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "liveurl",
			Subsystem: "session",
			Name:      "passthrough_total",
			Help:      "Inbound messages not matching the navigation protocol.",
		},
	)
	dispatchDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "liveurl",
			Subsystem: "session",
			Name:      "dispatch_dropped_total",
			Help:      "Navigation requests dropped because the session had stopped.",
		},
	)
	operationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liveurl",
			Subsystem: "nav",
			Name:      "operation_failures_total",
			Help:      "Navigation operations that failed to build or apply.",
		},
		[]string{"reason"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liveurl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liveurl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionsActive,
			operationsApplied,
			messagesPassedThrough,
			dispatchDropped,
			operationFailures,
			httpRequests,
			httpDuration,
		)
	})
}

func SessionStarted() {
	RegisterMetrics()
	sessionsActive.Inc()
}

func SessionStopped() {
	RegisterMetrics()
	sessionsActive.Dec()
}

func RecordOperation(mode, stack string) {
	RegisterMetrics()
	operationsApplied.WithLabelValues(mode, stack).Inc()
}

func RecordPassThrough() {
	RegisterMetrics()
	messagesPassedThrough.Inc()
}

func RecordDroppedDispatch() {
	RegisterMetrics()
	dispatchDropped.Inc()
}

func RecordOperationFailure(reason string) {
	RegisterMetrics()
	operationFailures.WithLabelValues(reason).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
