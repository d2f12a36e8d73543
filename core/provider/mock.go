package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wassel-delivery/dispatch/core/model"
)

// MockDriverProvider serves a fixed driver set from memory. It replaces the
// legacy hardcoded sample-data fallback with an explicit test double.
type MockDriverProvider struct {
	mu      sync.Mutex
	drivers []model.Driver
	// Err, when set, is returned by every lookup.
	Err error
	// Calls counts GetAvailableDrivers invocations.
	Calls int
}

// NewMockDriverProvider creates a provider serving the given drivers.
func NewMockDriverProvider(drivers ...model.Driver) *MockDriverProvider {
	return &MockDriverProvider{drivers: drivers}
}

// SetDrivers replaces the served driver set.
func (m *MockDriverProvider) SetDrivers(drivers ...model.Driver) {
	m.mu.Lock()
	m.drivers = append([]model.Driver(nil), drivers...)
	m.mu.Unlock()
}

// GetAvailableDrivers returns the configured drivers, optionally filtered by
// explicit zone assignment.
func (m *MockDriverProvider) GetAvailableDrivers(_ context.Context, zone string) ([]model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if zone == "" {
		return append([]model.Driver(nil), m.drivers...), nil
	}
	var out []model.Driver
	for _, d := range m.drivers {
		if d.Zone == zone {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetDriverSnapshot returns the driver with the given id.
func (m *MockDriverProvider) GetDriverSnapshot(_ context.Context, driverID string) (model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.Driver{}, m.Err
	}
	for _, d := range m.drivers {
		if d.ID == driverID {
			return d, nil
		}
	}
	return model.Driver{}, fmt.Errorf("driver %s not found", driverID)
}

// MockOrderProvider serves a fixed order set from memory.
type MockOrderProvider struct {
	mu     sync.Mutex
	orders map[string]model.Order
}

// NewMockOrderProvider creates a provider serving the given orders.
func NewMockOrderProvider(orders ...model.Order) *MockOrderProvider {
	m := &MockOrderProvider{orders: make(map[string]model.Order, len(orders))}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

// GetOrderByID returns the order with the given id.
func (m *MockOrderProvider) GetOrderByID(_ context.Context, orderID string) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s not found", orderID)
	}
	return o, nil
}

// RecordingSink captures notifications for assertions in tests.
type RecordingSink struct {
	mu          sync.Mutex
	Assignments []model.Assignment
	Failures    []model.Order
	Escalations []model.Order
	// Escalated is signalled once per escalation.
	Escalated chan struct{}
}

// NewRecordingSink creates a sink with a buffered escalation channel.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{Escalated: make(chan struct{}, 8)}
}

func (s *RecordingSink) NotifyAssignment(a model.Assignment) {
	s.mu.Lock()
	s.Assignments = append(s.Assignments, a)
	s.mu.Unlock()
}

func (s *RecordingSink) NotifyDispatchFailure(o model.Order, reason string) {
	s.mu.Lock()
	s.Failures = append(s.Failures, o)
	s.mu.Unlock()
}

func (s *RecordingSink) NotifyRetryEscalation(o model.Order) {
	s.mu.Lock()
	s.Escalations = append(s.Escalations, o)
	s.mu.Unlock()
	select {
	case s.Escalated <- struct{}{}:
	default:
	}
}

// AssignmentCount returns the number of recorded assignments.
func (s *RecordingSink) AssignmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Assignments)
}

// EscalationCount returns the number of recorded escalations.
func (s *RecordingSink) EscalationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Escalations)
}

// FakeClock is a manually advanced clock. Sleep advances the clock instantly,
// making retry timing deterministic in tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
	// Slept records the requested sleep durations.
	Slept []time.Duration
}

// NewFakeClock creates a clock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Sleep advances the clock by d and returns immediately, unless ctx is
// already cancelled.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.Slept = append(c.Slept, d)
	c.mu.Unlock()
	return nil
}
