package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassel-delivery/dispatch/core/model"
)

func TestInMemoryDriverStore(t *testing.T) {
	s := NewInMemoryDriverStore()
	s.Upsert(model.Driver{ID: "d1", Zone: "central"})
	s.Upsert(model.Driver{ID: "d2", Zone: "north"})
	s.Upsert(model.Driver{ID: "d1", Zone: "north", Rating: 4.5}) // replace

	all, err := s.GetAvailableDrivers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	north, err := s.GetAvailableDrivers(context.Background(), "north")
	require.NoError(t, err)
	assert.Len(t, north, 2)

	d, err := s.GetDriverSnapshot(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, d.Rating)

	s.Remove("d1")
	_, err = s.GetDriverSnapshot(context.Background(), "d1")
	assert.Error(t, err)
}

func TestInMemoryOrderStore(t *testing.T) {
	s := NewInMemoryOrderStore()
	s.Put(model.Order{ID: "o1", TotalAmount: 50})

	o, err := s.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, o.TotalAmount)

	_, err = s.GetOrderByID(context.Background(), "missing")
	assert.Error(t, err)
}
