package metrics

import (
	"context"
	"time"

	"github.com/wassel-delivery/dispatch/core/events"
	coremetrics "github.com/wassel-delivery/dispatch/core/metrics"
	"github.com/wassel-delivery/dispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records the retry
// lifecycle into the metrics sink. Assignments and immediate failures are
// recorded by the dispatcher itself; the bus carries the retry and escalation
// events that would otherwise never reach the sinks. It stops when the
// context is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.RetryEvent:
					_ = sink.RecordFailure(coremetrics.FailureRecord{
						OrderID: e.Order.ID,
						Reason:  "retry_scheduled",
						Time:    time.Now(),
					})
				case events.EscalationEvent:
					_ = sink.RecordFailure(coremetrics.FailureRecord{
						OrderID: e.Order.ID,
						Reason:  "retry_exhausted",
						Time:    time.Now(),
					})
				}
			}
		}
	}()
}
