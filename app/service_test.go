package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassel-delivery/dispatch/config"
	"github.com/wassel-delivery/dispatch/core/model"
)

func TestNew_DefaultConfig(t *testing.T) {
	svc, err := New(config.Default())
	require.NoError(t, err)
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	// No broker configured: notifications go to the log sink and dispatching
	// through the stores works end to end.
	svc.Drivers.Upsert(model.Driver{
		ID:              "drv1",
		CurrentLocation: model.Coordinate{Latitude: 24.7180, Longitude: 46.6753},
		Vehicle:         model.Vehicle{Type: model.VehicleCar},
		Rating:          4.5,
		TotalDeliveries: 80,
	})
	svc.Orders.Put(model.Order{
		ID:               "ORD001",
		MerchantLocation: model.Coordinate{Latitude: 24.7136, Longitude: 46.6753},
		TotalAmount:      60,
		ItemCount:        2,
	})

	a, err := svc.Dispatcher.DispatchOrder(context.Background(), "ORD001", "")
	require.NoError(t, err)
	assert.Equal(t, "drv1", a.DriverID)
	assert.Equal(t, "optimal_score", a.Algorithm)
}

func TestNew_DefaultAlgorithmFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Dispatch.DefaultAlgorithm = "nearest_driver"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	svc.Drivers.Upsert(model.Driver{
		ID:              "drv1",
		CurrentLocation: model.Coordinate{Latitude: 24.7180, Longitude: 46.6753},
		Vehicle:         model.Vehicle{Type: model.VehicleMotorcycle},
		Rating:          4.0,
	})
	svc.Orders.Put(model.Order{
		ID:               "ORD002",
		MerchantLocation: model.Coordinate{Latitude: 24.7136, Longitude: 46.6753},
		TotalAmount:      30,
		ItemCount:        1,
	})

	a, err := svc.Dispatcher.DispatchOrder(context.Background(), "ORD002", "")
	require.NoError(t, err)
	assert.Equal(t, "nearest_driver", a.Algorithm)
}
