// Package provider declares the external collaborators the dispatch core
// consumes but does not implement: driver and order lookups, the notification
// sink and the clock.
package provider

import (
	"context"
	"time"

	"github.com/wassel-delivery/dispatch/core/model"
)

// DriverProvider returns driver snapshots. Snapshots may be stale; the
// dispatcher never caches them beyond one call's lifetime.
type DriverProvider interface {
	// GetAvailableDrivers returns drivers currently available for dispatch.
	// zone narrows the search when non-empty; providers may ignore it.
	GetAvailableDrivers(ctx context.Context, zone string) ([]model.Driver, error)
}

// DriverSnapshotter optionally exposes single-driver lookups.
type DriverSnapshotter interface {
	GetDriverSnapshot(ctx context.Context, driverID string) (model.Driver, error)
}

// OrderProvider looks up orders by id.
type OrderProvider interface {
	GetOrderByID(ctx context.Context, orderID string) (model.Order, error)
}

// NotificationSink receives dispatch outcomes. Calls are fire-and-forget:
// sink failures must never abort a dispatch.
type NotificationSink interface {
	NotifyAssignment(a model.Assignment)
	NotifyDispatchFailure(o model.Order, reason string)
	NotifyRetryEscalation(o model.Order)
}

// Clock abstracts time for deterministic retry-queue testing. Sleep returns
// early with the context error when ctx is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Conditions supplies the environment inputs of the predictive strategy.
type Conditions interface {
	// HourOfDay returns the current hour in [0,23].
	HourOfDay() int
	// Weather returns the current condition, e.g. "clear" or "rain".
	Weather() string
}

// SystemClock implements Clock over the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is cancelled.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StaticConditions is a fixed Conditions implementation. The zero value
// reports hour 0 and clear weather.
type StaticConditions struct {
	Hour      int
	Condition string
}

func (c StaticConditions) HourOfDay() int {
	return c.Hour
}

func (c StaticConditions) Weather() string {
	if c.Condition == "" {
		return "clear"
	}
	return c.Condition
}
