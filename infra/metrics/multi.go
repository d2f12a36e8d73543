package metrics

import coremetrics "github.com/wassel-delivery/dispatch/core/metrics"

// MultiSink fans dispatch records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordFailure(rec coremetrics.FailureRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordFailure(rec); err != nil {
			return err
		}
	}
	return nil
}
