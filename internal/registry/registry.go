// Package registry manages the vehicle collection: CRUD plus the status
// flips driven by the booking lifecycle.
package registry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"fleetbook/internal/kvstore"
	"fleetbook/internal/models"
)

const vehiclesKey = "vehicles"

// Registry provides vehicle operations over the key-value store.
type Registry struct {
	store  *kvstore.Store
	logger *zerolog.Logger
}

// New builds a Registry over the given store.
func New(store *kvstore.Store, logger *zerolog.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// List returns all vehicles in stored order. An unreachable store yields an
// empty list, never an error.
func (r *Registry) List(ctx context.Context) []models.Vehicle {
	vehicles := []models.Vehicle{}
	r.store.Get(ctx, vehiclesKey, &vehicles)
	return vehicles
}

// Get returns the vehicle with the given id, or models.ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicles := r.List(ctx)
	for i := range vehicles {
		if vehicles[i].ID == id {
			return &vehicles[i], nil
		}
	}
	return nil, fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
}

// ListByStatus returns vehicles with the given status.
func (r *Registry) ListByStatus(ctx context.Context, status string) []models.Vehicle {
	matched := []models.Vehicle{}
	for _, v := range r.List(ctx) {
		if v.Status == status {
			matched = append(matched, v)
		}
	}
	return matched
}

// Add assigns a fresh id to the vehicle, appends it to the collection and
// returns the id. Status defaults to available.
func (r *Registry) Add(ctx context.Context, v models.Vehicle) (string, error) {
	if v.Name == "" {
		return "", fmt.Errorf("vehicle name is required")
	}
	if v.Seats <= 0 {
		return "", fmt.Errorf("vehicle seats must be positive, got %d", v.Seats)
	}
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	if !models.ValidVehicleStatus(v.Status) {
		return "", fmt.Errorf("unknown vehicle status %q", v.Status)
	}

	v.ID = kvstore.NewID()
	vehicles := append(r.List(ctx), v)
	r.store.Set(ctx, vehiclesKey, vehicles)

	r.logger.Info().Str("vehicle_id", v.ID).Str("name", v.DisplayName()).Msg("vehicle added")
	return v.ID, nil
}

// Update holds the fields a partial vehicle update may change. Nil fields
// are left untouched.
type Update struct {
	Name         *string
	Model        *string
	Image        *string
	Seats        *int
	FuelType     *string
	Status       *string
	LicensePlate *string
}

// Update merges the given fields into the stored vehicle. An unknown id is
// models.ErrNotFound rather than a silent no-op.
func (r *Registry) Update(ctx context.Context, id string, upd Update) error {
	if upd.Seats != nil && *upd.Seats <= 0 {
		return fmt.Errorf("vehicle seats must be positive, got %d", *upd.Seats)
	}
	if upd.Status != nil && !models.ValidVehicleStatus(*upd.Status) {
		return fmt.Errorf("unknown vehicle status %q", *upd.Status)
	}

	vehicles := r.List(ctx)
	for i := range vehicles {
		if vehicles[i].ID != id {
			continue
		}
		applyUpdate(&vehicles[i], upd)
		r.store.Set(ctx, vehiclesKey, vehicles)
		return nil
	}
	return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
}

// Delete removes the vehicle unconditionally. Bookings referencing it are
// kept as-is; they carry their own name snapshot.
func (r *Registry) Delete(ctx context.Context, id string) error {
	vehicles := r.List(ctx)
	for i := range vehicles {
		if vehicles[i].ID != id {
			continue
		}
		vehicles = append(vehicles[:i], vehicles[i+1:]...)
		r.store.Set(ctx, vehiclesKey, vehicles)
		r.logger.Info().Str("vehicle_id", id).Msg("vehicle deleted")
		return nil
	}
	return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
}

// SetStatus is a thin wrapper over Update for the status field.
func (r *Registry) SetStatus(ctx context.Context, id, status string) error {
	return r.Update(ctx, id, Update{Status: &status})
}

func applyUpdate(v *models.Vehicle, upd Update) {
	if upd.Name != nil {
		v.Name = *upd.Name
	}
	if upd.Model != nil {
		v.Model = *upd.Model
	}
	if upd.Image != nil {
		v.Image = *upd.Image
	}
	if upd.Seats != nil {
		v.Seats = *upd.Seats
	}
	if upd.FuelType != nil {
		v.FuelType = *upd.FuelType
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}
	if upd.LicensePlate != nil {
		v.LicensePlate = *upd.LicensePlate
	}
}
