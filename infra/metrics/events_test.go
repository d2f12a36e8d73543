package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/wassel-delivery/dispatch/core/events"
	coremetrics "github.com/wassel-delivery/dispatch/core/metrics"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/internal/eventbus"
)

type captureSink struct {
	failures chan coremetrics.FailureRecord
}

func (s *captureSink) RecordAssignment(coremetrics.AssignmentRecord) error { return nil }

func (s *captureSink) RecordFailure(r coremetrics.FailureRecord) error {
	s.failures <- r
	return nil
}

func waitFailure(t *testing.T, ch <-chan coremetrics.FailureRecord) coremetrics.FailureRecord {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no failure record received")
		return coremetrics.FailureRecord{}
	}
}

func TestStartEventCollector_RecordsRetryLifecycle(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{failures: make(chan coremetrics.FailureRecord, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	order := model.Order{ID: "ord42", Priority: model.PriorityUrgent}
	bus.Publish(events.RetryEvent{Order: order, Attempt: 1, NextRetryAt: time.Now()})
	rec := waitFailure(t, sink.failures)
	if rec.Reason != "retry_scheduled" {
		t.Errorf("reason = %q, want retry_scheduled", rec.Reason)
	}
	if rec.OrderID != "ord42" {
		t.Errorf("order id = %q, want ord42", rec.OrderID)
	}

	bus.Publish(events.EscalationEvent{Order: order, Attempts: 3})
	rec = waitFailure(t, sink.failures)
	if rec.Reason != "retry_exhausted" {
		t.Errorf("reason = %q, want retry_exhausted", rec.Reason)
	}
}

func TestStartEventCollector_IgnoresAssignmentEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{failures: make(chan coremetrics.FailureRecord, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	// The dispatcher records assignments into the sinks itself; the bridge
	// must not record them a second time.
	bus.Publish(events.AssignmentEvent{Assignment: model.Assignment{OrderID: "ord1"}})
	bus.Publish(events.EscalationEvent{Order: model.Order{ID: "ord2"}, Attempts: 3})

	rec := waitFailure(t, sink.failures)
	if rec.OrderID != "ord2" {
		t.Errorf("order id = %q, want ord2", rec.OrderID)
	}
}

func TestStartEventCollector_NilBusOrSink(t *testing.T) {
	StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
	StartEventCollector(context.Background(), eventbus.New(), nil)
}
