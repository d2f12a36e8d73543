package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/wassel-delivery/dispatch/core/metrics"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	failures    *prometheus.CounterVec
	scores      *prometheus.HistogramVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. If reg
// is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Total number of recorded driver assignments",
	}, []string{"zone", "algorithm"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_failures_total",
		Help: "Total number of recorded dispatch failures",
	}, []string{"zone", "reason"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_assignment_score",
		Help:    "Composite score of the winning driver",
		Buckets: prometheus.LinearBuckets(0, 1, 12),
	}, []string{"algorithm"})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(failures); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			failures = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scores); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scores = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{assignments: assignments, failures: failures, scores: scores}, nil
}

// RecordAssignment increments the assignment counter and observes the score.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(rec.Zone, rec.Algorithm).Inc()
	s.scores.WithLabelValues(rec.Algorithm).Observe(rec.Score)
	return nil
}

// RecordFailure increments the failure counter.
func (s *PromSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(rec.Zone, rec.Reason).Inc()
	return nil
}
