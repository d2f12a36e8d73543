// Package metrics defines the dispatch observability contracts and the
// in-memory analytics collector.
package metrics

import "time"

// AssignmentRecord captures one successful dispatch for recording.
type AssignmentRecord struct {
	OrderID   string
	DriverID  string
	Zone      string // order zone, empty when unzoned
	Algorithm string
	Score     float64
	Latency   time.Duration
	Time      time.Time
}

// FailureRecord captures one failed dispatch attempt.
type FailureRecord struct {
	OrderID string
	Zone    string
	Reason  string
	Time    time.Time
}

// Sink records dispatch outcomes for observability purposes.
type Sink interface {
	RecordAssignment(rec AssignmentRecord) error
	RecordFailure(rec FailureRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
func (NopSink) RecordFailure(FailureRecord) error       { return nil }
