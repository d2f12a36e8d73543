// Package events defines the typed events the dispatcher publishes on the
// internal bus.
package events

import (
	"time"

	"github.com/wassel-delivery/dispatch/core/model"
)

// AssignmentEvent is published after a successful dispatch.
type AssignmentEvent struct {
	Assignment model.Assignment
}

// DispatchFailureEvent is published when a dispatch call fails.
type DispatchFailureEvent struct {
	Order  model.Order
	Reason string
	Err    error
}

// RetryEvent is published when an order is scheduled for another attempt.
type RetryEvent struct {
	Order       model.Order
	Attempt     int
	NextRetryAt time.Time
}

// EscalationEvent is published when retries are exhausted and the order is
// handed to manual dispatch.
type EscalationEvent struct {
	Order    model.Order
	Attempts int
}
