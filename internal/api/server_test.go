package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"fleetbook/internal/events"
	"fleetbook/internal/kvstore"
	"fleetbook/internal/ledger"
	"fleetbook/internal/models"
	"fleetbook/internal/registry"
)

func newTestServer(t *testing.T, rl RateLimit) (*HTTPServer, *registry.Registry, *ledger.Ledger) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := kvstore.NewMemory(&logger)
	reg := registry.New(store, &logger)
	led := ledger.New(store, reg, events.NewBus(), ledger.Config{}, &logger)
	return NewHTTPServer(reg, led, nil, rl, &logger), reg, led
}

func doJSON(t *testing.T, server http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func addVehicle(t *testing.T, server http.Handler) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/vehicles", map[string]any{
		"name": "Tesla", "model": "Model S", "seats": 5,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	decodeInto(t, rec, &created)
	return created["id"]
}

func bookingBody(vehicleID string) map[string]any {
	start := models.Today().AddDays(1).String()
	return map[string]any{
		"vehicleId": vehicleID,
		"startDate": start,
		"endDate":   start,
		"startTime": "09:00",
		"endTime":   "17:00",
		"purpose":   "Client meeting downtown",
		"bookedBy":  "John Smith",
	}
}

func addBooking(t *testing.T, server http.Handler, vehicleID string) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/bookings", bookingBody(vehicleID))
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	decodeInto(t, rec, &created)
	return created["id"]
}

func TestVehicleEndpoints(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})

	id := addVehicle(t, server)

	rec := doJSON(t, server, http.MethodGet, "/api/vehicles", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var vehicles []models.Vehicle
	decodeInto(t, rec, &vehicles)
	assert.Len(t, vehicles, 1)
	assert.Equal(t, id, vehicles[0].ID)

	rec = doJSON(t, server, http.MethodGet, "/api/vehicles/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPatch, "/api/vehicles/"+id, map[string]any{"seats": 7})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/vehicles?status=available", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &vehicles)
	assert.Len(t, vehicles, 1)
	assert.Equal(t, 7, vehicles[0].Seats)

	rec = doJSON(t, server, http.MethodDelete, "/api/vehicles/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/vehicles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleBadRequests(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})

	rec := doJSON(t, server, http.MethodPost, "/api/vehicles", map[string]any{"seats": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/vehicles", map[string]any{"name": "Van", "seats": 5, "wheels": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/vehicles", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBookingLifecycleEndpoints(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})
	vehicleID := addVehicle(t, server)

	id := addBooking(t, server, vehicleID)

	// The vehicle flips to booked on creation.
	rec := doJSON(t, server, http.MethodGet, "/api/vehicles/"+vehicleID, nil)
	var vehicle models.Vehicle
	decodeInto(t, rec, &vehicle)
	assert.Equal(t, models.VehicleBooked, vehicle.Status)

	rec = doJSON(t, server, http.MethodGet, "/api/bookings/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var booking models.Booking
	decodeInto(t, rec, &booking)
	assert.Equal(t, models.BookingActive, booking.Status)
	assert.Equal(t, "Tesla Model S", booking.VehicleName)

	rec = doJSON(t, server, http.MethodPost, "/api/bookings/"+id+"/complete", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/vehicles/"+vehicleID, nil)
	decodeInto(t, rec, &vehicle)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)

	rec = doJSON(t, server, http.MethodGet, "/api/bookings?status=completed", nil)
	var bookings []models.Booking
	decodeInto(t, rec, &bookings)
	assert.Len(t, bookings, 1)

	rec = doJSON(t, server, http.MethodPost, "/api/bookings/ghost/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingRejections(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})
	vehicleID := addVehicle(t, server)

	body := bookingBody(vehicleID)
	body["endTime"] = body["startTime"]
	rec := doJSON(t, server, http.MethodPost, "/api/bookings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/bookings", bookingBody("ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body = bookingBody(vehicleID)
	body["driver"] = "extra field"
	rec = doJSON(t, server, http.MethodPost, "/api/bookings", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingUpdateEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})
	vehicleID := addVehicle(t, server)
	id := addBooking(t, server, vehicleID)

	rec := doJSON(t, server, http.MethodPatch, "/api/bookings/"+id, map[string]any{
		"purpose": "Extended client visit",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/bookings/"+id, nil)
	var booking models.Booking
	decodeInto(t, rec, &booking)
	assert.Equal(t, "Extended client visit", booking.Purpose)
	assert.Equal(t, "John Smith", booking.BookedBy)
}

func TestCalendarDayEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})
	vehicleID := addVehicle(t, server)
	addBooking(t, server, vehicleID)

	day := models.Today().AddDays(1).String()
	rec := doJSON(t, server, http.MethodGet, "/api/calendar/day?date="+day, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Date       string           `json:"date"`
		HasBooking bool             `json:"hasBooking"`
		Bookings   []models.Booking `json:"bookings"`
	}
	decodeInto(t, rec, &payload)
	assert.True(t, payload.HasBooking)
	assert.Len(t, payload.Bookings, 1)

	empty := models.Today().AddDays(30).String()
	rec = doJSON(t, server, http.MethodGet, "/api/calendar/day?date="+empty, nil)
	decodeInto(t, rec, &payload)
	assert.False(t, payload.HasBooking)
	assert.Empty(t, payload.Bookings)

	rec = doJSON(t, server, http.MethodGet, "/api/calendar/day?date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndTimeOptionsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})

	var payload struct {
		Options []string `json:"options"`
	}

	rec := doJSON(t, server, http.MethodGet, "/api/end-time-options?startTime=10:00", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &payload)
	assert.Len(t, payload.Options, 55)
	assert.Equal(t, "10:15", payload.Options[0])

	day := models.Today().AddDays(1).String()
	next := models.Today().AddDays(2).String()
	url := fmt.Sprintf("/api/end-time-options?startTime=10:00&startDate=%s&endDate=%s", day, next)
	rec = doJSON(t, server, http.MethodGet, url, nil)
	decodeInto(t, rec, &payload)
	assert.Len(t, payload.Options, 96)

	rec = doJSON(t, server, http.MethodGet, "/api/end-time-options?startTime=10:07", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingsReportEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{})
	vehicleID := addVehicle(t, server)
	addBooking(t, server, vehicleID)

	rec := doJSON(t, server, http.MethodGet, "/api/reports/bookings.xlsx", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestRateLimit(t *testing.T) {
	server, _, _ := newTestServer(t, RateLimit{PerSecond: 1, Burst: 1})

	rec := doJSON(t, server, http.MethodGet, "/api/vehicles", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/vehicles", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
