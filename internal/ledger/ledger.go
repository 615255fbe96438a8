// Package ledger manages the booking collection and the status transitions
// that keep vehicle availability in step with booking records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fleetbook/internal/events"
	"fleetbook/internal/kvstore"
	"fleetbook/internal/metrics"
	"fleetbook/internal/models"
	"fleetbook/internal/policy"
)

const bookingsKey = "bookings"

// Vehicles is the slice of the vehicle registry the ledger needs.
type Vehicles interface {
	Get(ctx context.Context, id string) (*models.Vehicle, error)
	SetStatus(ctx context.Context, id, status string) error
}

// Publisher receives booking lifecycle events.
type Publisher interface {
	Publish(event events.Event)
}

// Config tunes ledger behavior.
type Config struct {
	Policy policy.Policy
	// DefaultBookedBy fills the requester identity when the caller omits
	// it. There is no auth system; a fixed identity is acceptable.
	DefaultBookedBy string
}

// Ledger provides booking operations over the key-value store.
type Ledger struct {
	store    *kvstore.Store
	vehicles Vehicles
	bus      Publisher
	cfg      Config
	logger   *zerolog.Logger
	now      func() time.Time
}

// New builds a Ledger. bus may be nil when no subscriber exists.
func New(store *kvstore.Store, vehicles Vehicles, bus Publisher, cfg Config, logger *zerolog.Logger) *Ledger {
	if cfg.DefaultBookedBy == "" {
		cfg.DefaultBookedBy = "Office User"
	}
	return &Ledger{
		store:    store,
		vehicles: vehicles,
		bus:      bus,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns all bookings in stored order. Callers wanting a date-ordered
// display must sort; insertion order is not guaranteed to be meaningful.
func (l *Ledger) List(ctx context.Context) []models.Booking {
	bookings := []models.Booking{}
	l.store.Get(ctx, bookingsKey, &bookings)
	return bookings
}

// Get returns the booking with the given id, or models.ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (*models.Booking, error) {
	bookings := l.List(ctx)
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
}

// ListByVehicle returns bookings referencing the given vehicle.
func (l *Ledger) ListByVehicle(ctx context.Context, vehicleID string) []models.Booking {
	matched := []models.Booking{}
	for _, b := range l.List(ctx) {
		if b.VehicleID == vehicleID {
			matched = append(matched, b)
		}
	}
	return matched
}

// ListByStatus returns bookings with the given status.
func (l *Ledger) ListByStatus(ctx context.Context, status string) []models.Booking {
	matched := []models.Booking{}
	for _, b := range l.List(ctx) {
		if b.Status == status {
			matched = append(matched, b)
		}
	}
	return matched
}

// Create validates the request, flips the vehicle to booked and persists a
// new active booking, in that order. A policy rejection wraps
// policy.ErrValidation; an unknown vehicle wraps models.ErrNotFound.
// If persisting fails after the vehicle flip the store has already logged
// it; the flip is not rolled back (accepted best-effort window).
func (l *Ledger) Create(ctx context.Context, req policy.Request) (string, error) {
	req.Normalize()

	existing := l.List(ctx)
	if err := l.cfg.Policy.Validate(req, existing); err != nil {
		metrics.IncBookingCreated("rejected")
		return "", err
	}

	vehicle, err := l.vehicles.Get(ctx, req.VehicleID)
	if err != nil {
		metrics.IncBookingCreated("rejected")
		return "", err
	}

	if err := l.vehicles.SetStatus(ctx, req.VehicleID, models.VehicleBooked); err != nil {
		return "", fmt.Errorf("set vehicle %s booked: %w", req.VehicleID, err)
	}

	bookedBy := req.BookedBy
	if bookedBy == "" {
		bookedBy = l.cfg.DefaultBookedBy
	}

	booking := models.Booking{
		ID:          kvstore.NewID(),
		VehicleID:   req.VehicleID,
		VehicleName: vehicle.DisplayName(),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Purpose:     req.Purpose,
		BookedBy:    bookedBy,
		Passengers:  req.Passengers,
		Notes:       req.Notes,
		Status:      models.BookingActive,
		CreatedAt:   l.now(),
	}

	l.store.Set(ctx, bookingsKey, append(existing, booking))

	metrics.IncBookingCreated("created")
	l.publish(events.BookingCreated, &booking)
	l.logger.Info().
		Str("booking_id", booking.ID).
		Str("vehicle_id", booking.VehicleID).
		Str("start", booking.StartDate.String()).
		Str("end", booking.EndDate.String()).
		Msg("booking created")
	return booking.ID, nil
}

// Cancel moves an active booking to cancelled and frees the vehicle.
// Unknown ids are models.ErrNotFound; terminal bookings are left untouched.
func (l *Ledger) Cancel(ctx context.Context, id string) error {
	return l.finish(ctx, id, models.BookingCancelled, events.BookingCancelled)
}

// Complete moves an active booking to completed and frees the vehicle.
// Unknown ids are models.ErrNotFound; terminal bookings are left untouched.
func (l *Ledger) Complete(ctx context.Context, id string) error {
	return l.finish(ctx, id, models.BookingCompleted, events.BookingCompleted)
}

func (l *Ledger) finish(ctx context.Context, id, status, eventType string) error {
	bookings := l.List(ctx)
	for i := range bookings {
		b := &bookings[i]
		if b.ID != id {
			continue
		}
		if b.IsTerminal() {
			// Terminal states never transition again; the vehicle is
			// left alone too.
			return nil
		}
		b.Status = status
		l.store.Set(ctx, bookingsKey, bookings)

		if err := l.vehicles.SetStatus(ctx, b.VehicleID, models.VehicleAvailable); err != nil {
			// The vehicle may have been deleted since booking time.
			if !errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("free vehicle %s: %w", b.VehicleID, err)
			}
			l.logger.Warn().Str("vehicle_id", b.VehicleID).Str("booking_id", id).
				Msg("vehicle gone, status not freed")
		}

		metrics.IncBookingFinished(status)
		l.publish(eventType, b)
		l.logger.Info().Str("booking_id", id).Str("status", status).Msg("booking finished")
		return nil
	}
	return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
}

// Update holds the fields a raw booking update may change. Status and
// CreatedAt are deliberately absent: status moves only through Create,
// Cancel and Complete, and CreatedAt is set once.
type Update struct {
	StartDate  *models.Date
	EndDate    *models.Date
	StartTime  *string
	EndTime    *string
	Purpose    *string
	BookedBy   *string
	Passengers *string
	Notes      *string
}

// Update merges the given fields into the stored booking without re-running
// availability validation; that is the caller's responsibility. Unknown ids
// are models.ErrNotFound.
func (l *Ledger) Update(ctx context.Context, id string, upd Update) error {
	bookings := l.List(ctx)
	for i := range bookings {
		if bookings[i].ID != id {
			continue
		}
		applyUpdate(&bookings[i], upd)
		l.store.Set(ctx, bookingsKey, bookings)
		return nil
	}
	return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
}

func (l *Ledger) publish(eventType string, b *models.Booking) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.Event{
		Type:      eventType,
		BookingID: b.ID,
		VehicleID: b.VehicleID,
		Status:    b.Status,
		At:        l.now(),
	})
}

func applyUpdate(b *models.Booking, upd Update) {
	if upd.StartDate != nil {
		b.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		b.EndDate = *upd.EndDate
	}
	if upd.StartTime != nil {
		b.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		b.EndTime = *upd.EndTime
	}
	if upd.Purpose != nil {
		b.Purpose = *upd.Purpose
	}
	if upd.BookedBy != nil {
		b.BookedBy = *upd.BookedBy
	}
	if upd.Passengers != nil {
		b.Passengers = *upd.Passengers
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
}
