package registry

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"fleetbook/internal/kvstore"
	"fleetbook/internal/models"
)

func newTestRegistry() *Registry {
	logger := zerolog.New(io.Discard)
	return New(kvstore.NewMemory(&logger), &logger)
}

func TestRegistryAddAndGet(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	assert.Empty(t, reg.List(ctx))

	id, err := reg.Add(ctx, models.Vehicle{Name: "Tesla", Model: "Model S", Seats: 5})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := reg.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "Tesla", got.Name)
	assert.Equal(t, models.VehicleAvailable, got.Status)

	_, err = reg.Get(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegistryAddValidation(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	_, err := reg.Add(ctx, models.Vehicle{Seats: 5})
	assert.Error(t, err)

	_, err = reg.Add(ctx, models.Vehicle{Name: "Van", Seats: 0})
	assert.Error(t, err)

	_, err = reg.Add(ctx, models.Vehicle{Name: "Van", Seats: 5, Status: "parked"})
	assert.Error(t, err)

	assert.Empty(t, reg.List(ctx))
}

func TestRegistryUpdate(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	id, err := reg.Add(ctx, models.Vehicle{Name: "Toyota", Model: "Camry", Seats: 5})
	assert.NoError(t, err)

	name := "Toyota Updated"
	seats := 7
	assert.NoError(t, reg.Update(ctx, id, Update{Name: &name, Seats: &seats}))

	got, err := reg.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "Toyota Updated", got.Name)
	assert.Equal(t, 7, got.Seats)
	// Untouched fields survive a partial update.
	assert.Equal(t, "Camry", got.Model)

	assert.ErrorIs(t, reg.Update(ctx, "nope", Update{Name: &name}), models.ErrNotFound)

	bad := -1
	assert.Error(t, reg.Update(ctx, id, Update{Seats: &bad}))

	badStatus := "parked"
	assert.Error(t, reg.Update(ctx, id, Update{Status: &badStatus}))
}

func TestRegistrySetStatus(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	id, err := reg.Add(ctx, models.Vehicle{Name: "BMW", Model: "X5", Seats: 7})
	assert.NoError(t, err)

	assert.NoError(t, reg.SetStatus(ctx, id, models.VehicleBooked))

	booked := reg.ListByStatus(ctx, models.VehicleBooked)
	assert.Len(t, booked, 1)
	assert.Equal(t, id, booked[0].ID)
	assert.Empty(t, reg.ListByStatus(ctx, models.VehicleMaintenance))
}

func TestRegistryDelete(t *testing.T) {
	reg := newTestRegistry()
	ctx := context.Background()

	id1, _ := reg.Add(ctx, models.Vehicle{Name: "Honda", Seats: 5})
	id2, _ := reg.Add(ctx, models.Vehicle{Name: "Audi", Seats: 5})

	assert.NoError(t, reg.Delete(ctx, id1))
	assert.Len(t, reg.List(ctx), 1)

	_, err := reg.Get(ctx, id1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = reg.Get(ctx, id2)
	assert.NoError(t, err)

	assert.ErrorIs(t, reg.Delete(ctx, id1), models.ErrNotFound)
}
