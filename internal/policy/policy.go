// Package policy holds the pure decision logic for booking availability:
// the quarter-hour time grid, the date/time validation rules applied before
// a booking is created, and the calendar day-matching predicates used by
// listing views. It performs no I/O.
package policy

import (
	"errors"
	"fmt"

	"fleetbook/internal/models"
)

// ErrValidation is the root of every rejection produced by Validate.
// A caller must treat it as non-retryable without corrected input.
var ErrValidation = errors.New("booking validation failed")

const (
	// SlotMinutes is the grid step for start/end times.
	SlotMinutes = 15
	// SlotsPerDay is the number of grid marks in a day.
	SlotsPerDay = 24 * 60 / SlotMinutes

	// MinPurposeLen is the minimum length of the purpose text.
	MinPurposeLen = 5
)

// Request is a booking request before ids and timestamps are assigned.
type Request struct {
	VehicleID  string
	StartDate  models.Date
	EndDate    models.Date
	StartTime  string
	EndTime    string
	Purpose    string
	BookedBy   string
	Passengers string
	Notes      string
}

// Normalize applies submission defaults: an omitted end date becomes the
// start date, so it is never absent in storage.
func (r *Request) Normalize() {
	if r.EndDate.IsZero() {
		r.EndDate = r.StartDate
	}
}

// SameDay reports whether the request starts and ends on one calendar day.
func (r *Request) SameDay() bool {
	return r.StartDate.Equal(r.EndDate)
}

// TimeGrid returns the 96 quarter-hour marks of a day, "00:00" through
// "23:45". Zero-padded HH:MM makes lexicographic comparison equal to time
// comparison, which every rule below relies on.
func TimeGrid() []string {
	grid := make([]string, 0, SlotsPerDay)
	for i := 0; i < SlotsPerDay; i++ {
		grid = append(grid, fmt.Sprintf("%02d:%02d", i/4, (i%4)*SlotMinutes))
	}
	return grid
}

// OnGrid reports whether s is one of the grid marks.
func OnGrid(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, mark := range TimeGrid() {
		if s == mark {
			return true
		}
	}
	return false
}

// EndTimeOptions returns the legal end times for a chosen start time.
// On a same-day trip only grid marks strictly after the start time are
// legal; across days every mark is.
func EndTimeOptions(startTime string, sameDay bool) []string {
	grid := TimeGrid()
	if !sameDay {
		return grid
	}
	options := make([]string, 0, len(grid))
	for _, mark := range grid {
		if mark > startTime {
			options = append(options, mark)
		}
	}
	return options
}

// Policy holds the tunable parts of request validation.
type Policy struct {
	// ConflictCheck enables rejection of requests whose date range
	// overlaps an existing active booking of the same vehicle. Off by
	// default: the original system let staff coordinate overlaps manually.
	ConflictCheck bool
}

// Validate checks a normalized request against the date/time rules.
// existing is the current booking collection, consulted only when
// ConflictCheck is on. All rejections wrap ErrValidation.
func (p Policy) Validate(req Request, existing []models.Booking) error {
	if req.VehicleID == "" {
		return fmt.Errorf("%w: vehicle id is required", ErrValidation)
	}
	if len(req.Purpose) < MinPurposeLen {
		return fmt.Errorf("%w: purpose must be at least %d characters", ErrValidation, MinPurposeLen)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if !OnGrid(req.StartTime) {
		return fmt.Errorf("%w: start time %q is not on the %d-minute grid", ErrValidation, req.StartTime, SlotMinutes)
	}
	if !OnGrid(req.EndTime) {
		return fmt.Errorf("%w: end time %q is not on the %d-minute grid", ErrValidation, req.EndTime, SlotMinutes)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: end date %s precedes start date %s", ErrValidation, req.EndDate, req.StartDate)
	}
	if req.StartDate.Before(models.Today()) {
		return fmt.Errorf("%w: start date %s is in the past", ErrValidation, req.StartDate)
	}
	if req.SameDay() && req.EndTime <= req.StartTime {
		return fmt.Errorf("%w: end time must be after start time on a same-day trip", ErrValidation)
	}
	if p.ConflictCheck && HasConflict(existing, req) {
		return fmt.Errorf("%w: vehicle %s already has an active booking overlapping %s..%s",
			ErrValidation, req.VehicleID, req.StartDate, req.EndDate)
	}
	return nil
}

// HasConflict reports whether the request's date range overlaps an existing
// active booking of the same vehicle. Day boundaries are inclusive.
func HasConflict(existing []models.Booking, req Request) bool {
	for i := range existing {
		b := &existing[i]
		if b.VehicleID != req.VehicleID || b.Status != models.BookingActive {
			continue
		}
		if b.OverlapsDates(req.StartDate, req.EndDate) {
			return true
		}
	}
	return false
}

// DayHasBooking reports whether any booking starts on the given day,
// optionally restricted to one vehicle. Only the start date counts; the
// calendar highlight deliberately ignores end dates. Distinct from
// BookingsOnDay, which also matches end dates. The asymmetry is part of
// the displayed behavior.
func DayHasBooking(bookings []models.Booking, day models.Date, vehicleID string) bool {
	for i := range bookings {
		b := &bookings[i]
		if vehicleID != "" && b.VehicleID != vehicleID {
			continue
		}
		if b.StartDate.Equal(day) {
			return true
		}
	}
	return false
}

// BookingsOnDay returns the bookings shown for a selected day, optionally
// restricted to one vehicle: those whose start date or end date equals the
// day. Days strictly inside a multi-day booking do not match.
func BookingsOnDay(bookings []models.Booking, day models.Date, vehicleID string) []models.Booking {
	matched := make([]models.Booking, 0)
	for i := range bookings {
		b := &bookings[i]
		if vehicleID != "" && b.VehicleID != vehicleID {
			continue
		}
		if b.MatchesDay(day) {
			matched = append(matched, *b)
		}
	}
	return matched
}
