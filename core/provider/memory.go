package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/wassel-delivery/dispatch/core/model"
)

// InMemoryDriverStore is a thread-safe driver registry backing the service
// when no external fleet source is wired.
type InMemoryDriverStore struct {
	mu      sync.RWMutex
	drivers map[string]model.Driver
}

// NewInMemoryDriverStore creates an empty registry.
func NewInMemoryDriverStore() *InMemoryDriverStore {
	return &InMemoryDriverStore{drivers: make(map[string]model.Driver)}
}

// Upsert adds or replaces a driver.
func (s *InMemoryDriverStore) Upsert(d model.Driver) {
	s.mu.Lock()
	s.drivers[d.ID] = d
	s.mu.Unlock()
}

// Remove deletes a driver from the registry.
func (s *InMemoryDriverStore) Remove(driverID string) {
	s.mu.Lock()
	delete(s.drivers, driverID)
	s.mu.Unlock()
}

// GetAvailableDrivers returns registered drivers, optionally filtered by
// explicit zone assignment.
func (s *InMemoryDriverStore) GetAvailableDrivers(_ context.Context, zone string) ([]model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if zone == "" || d.Zone == zone {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetDriverSnapshot returns the driver with the given id.
func (s *InMemoryDriverStore) GetDriverSnapshot(_ context.Context, driverID string) (model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[driverID]
	if !ok {
		return model.Driver{}, fmt.Errorf("driver %s not found", driverID)
	}
	return d, nil
}

// InMemoryOrderStore is a thread-safe order registry.
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

// NewInMemoryOrderStore creates an empty registry.
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{orders: make(map[string]model.Order)}
}

// Put adds or replaces an order.
func (s *InMemoryOrderStore) Put(o model.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

// GetOrderByID returns the order with the given id.
func (s *InMemoryOrderStore) GetOrderByID(_ context.Context, orderID string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s not found", orderID)
	}
	return o, nil
}
