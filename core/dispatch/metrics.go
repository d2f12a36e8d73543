package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchAttempts  *prometheus.CounterVec
	dispatchSuccesses *prometheus.CounterVec
	dispatchFailures  *prometheus.CounterVec
	assignmentLatency prometheus.Histogram
	retryQueueDepth   prometheus.Gauge
	retryEscalations  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge, prometheus.Counter) {
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Number of dispatch attempts",
		},
		[]string{"algorithm"},
	)
	successes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_success_total",
			Help: "Number of successful driver assignments",
		},
		[]string{"algorithm"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_failure_total",
			Help: "Number of failed dispatch attempts",
		},
		[]string{"reason"},
	)
	latency := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_assignment_latency_seconds",
			Help:    "Latency from dispatch start to driver assignment",
			Buckets: prometheus.DefBuckets,
		},
	)
	depth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_retry_queue_depth",
			Help: "Orders currently waiting in the retry queue",
		},
	)
	escalations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_retry_escalations_total",
			Help: "Orders escalated to manual dispatch after exhausted retries",
		},
	)
	return attempts, successes, failures, latency, depth, escalations
}

func init() {
	dispatchAttempts, dispatchSuccesses, dispatchFailures, assignmentLatency, retryQueueDepth, retryEscalations = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchAttempts, dispatchSuccesses, dispatchFailures, assignmentLatency, retryQueueDepth, retryEscalations)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchAttempts, dispatchSuccesses, dispatchFailures, assignmentLatency, retryQueueDepth, retryEscalations = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
