// Package seed writes a small demo fleet and booking history into empty
// collections so a fresh install has something to show.
package seed

import (
	"context"

	"github.com/rs/zerolog"

	"fleetbook/internal/kvstore"
	"fleetbook/internal/models"
)

const (
	vehiclesKey = "vehicles"
	bookingsKey = "bookings"
)

func demoVehicles() []models.Vehicle {
	return []models.Vehicle{
		{ID: "v1", Name: "Tesla", Model: "Model S", Seats: 5, FuelType: "Electric", Status: models.VehicleAvailable, LicensePlate: "EV-1234"},
		{ID: "v2", Name: "Toyota", Model: "Camry", Seats: 5, FuelType: "Hybrid", Status: models.VehicleAvailable, LicensePlate: "HY-5678"},
		{ID: "v3", Name: "BMW", Model: "X5", Seats: 7, FuelType: "Diesel", Status: models.VehicleBooked, LicensePlate: "BM-9012"},
		{ID: "v4", Name: "Honda", Model: "CR-V", Seats: 5, FuelType: "Petrol", Status: models.VehicleAvailable, LicensePlate: "HO-3456"},
		{ID: "v5", Name: "Audi", Model: "A4", Seats: 5, FuelType: "Petrol", Status: models.VehicleMaintenance, LicensePlate: "AU-7890"},
	}
}

func demoBookings() []models.Booking {
	today := models.Today()
	return []models.Booking{
		{
			ID: "b1", VehicleID: "v3", VehicleName: "BMW X5",
			StartDate: today, EndDate: today.AddDays(1),
			StartTime: "09:00", EndTime: "17:00",
			Purpose: "Client meeting in downtown", BookedBy: "John Smith",
			Status: models.BookingActive, CreatedAt: today.AddDays(-1).Time(),
		},
		{
			ID: "b2", VehicleID: "v1", VehicleName: "Tesla Model S",
			StartDate: today.AddDays(1), EndDate: today.AddDays(1),
			StartTime: "13:00", EndTime: "18:00",
			Purpose: "Airport pickup for executives", BookedBy: "Emma Johnson",
			Status: models.BookingActive, CreatedAt: today.Time(),
		},
		{
			ID: "b3", VehicleID: "v4", VehicleName: "Honda CR-V",
			StartDate: today.AddDays(-2), EndDate: today.AddDays(-1),
			StartTime: "08:00", EndTime: "16:00",
			Purpose: "Site inspection", BookedBy: "Michael Brown",
			Status: models.BookingCompleted, CreatedAt: today.AddDays(-3).Time(),
		},
	}
}

// EnsureDefaults seeds each collection that is currently empty. Already
// populated collections are left alone, so re-running at every startup is
// safe.
func EnsureDefaults(ctx context.Context, store *kvstore.Store, logger *zerolog.Logger) {
	vehicles := []models.Vehicle{}
	store.Get(ctx, vehiclesKey, &vehicles)
	if len(vehicles) == 0 {
		store.Set(ctx, vehiclesKey, demoVehicles())
		logger.Info().Int("count", len(demoVehicles())).Msg("seeded demo vehicles")
	}

	bookings := []models.Booking{}
	store.Get(ctx, bookingsKey, &bookings)
	if len(bookings) == 0 {
		store.Set(ctx, bookingsKey, demoBookings())
		logger.Info().Int("count", len(demoBookings())).Msg("seeded demo bookings")
	}
}
