// Package models defines the vehicle and booking records shared by all
// fleetbook components.
package models

import (
	"time"
)

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleBooked      = "booked"
	VehicleMaintenance = "maintenance"
)

// Booking statuses.
const (
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// ValidVehicleStatus reports whether s is a known vehicle status.
func ValidVehicleStatus(s string) bool {
	return s == VehicleAvailable || s == VehicleBooked || s == VehicleMaintenance
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	return s == BookingActive || s == BookingCompleted || s == BookingCancelled
}

// Vehicle is a bookable fleet asset. Status reflects current availability
// and is flipped by the booking lifecycle.
type Vehicle struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Image        string `json:"image"`
	Seats        int    `json:"seats"`
	FuelType     string `json:"fuelType"`
	Status       string `json:"status"`
	LicensePlate string `json:"licensePlate"`
}

// DisplayName returns the "name model" form used for the denormalized
// snapshot on bookings.
func (v *Vehicle) DisplayName() string {
	if v.Model == "" {
		return v.Name
	}
	return v.Name + " " + v.Model
}

// Booking is a reservation of one vehicle for a date/time range. VehicleName
// is a snapshot taken at creation and does not track later renames.
type Booking struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicleId"`
	VehicleName string    `json:"vehicleName"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	StartTime   string    `json:"startTime"` // "HH:MM", quarter-hour grid
	EndTime     string    `json:"endTime"`   // "HH:MM", quarter-hour grid
	Purpose     string    `json:"purpose"`
	BookedBy    string    `json:"bookedBy"`
	Passengers  string    `json:"passengers,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsTerminal reports whether the booking is in a final state.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}

// MatchesDay reports whether the booking should appear in a day-filtered
// listing: the day must equal the start date or the end date. Days strictly
// between the two do not match.
func (b *Booking) MatchesDay(day Date) bool {
	return b.StartDate.Equal(day) || b.EndDate.Equal(day)
}

// OverlapsDates reports whether the booking's date range intersects
// [start, end] with inclusive day boundaries.
func (b *Booking) OverlapsDates(start, end Date) bool {
	return !b.EndDate.Before(start) && !end.Before(b.StartDate)
}
