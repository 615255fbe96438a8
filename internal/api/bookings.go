package api

import (
	"errors"
	"net/http"

	"fleetbook/internal/ledger"
	"fleetbook/internal/metrics"
	"fleetbook/internal/models"
	"fleetbook/internal/policy"
)

type bookingCreateRequest struct {
	VehicleID  string      `json:"vehicleId"`
	StartDate  models.Date `json:"startDate"`
	EndDate    models.Date `json:"endDate"`
	StartTime  string      `json:"startTime"`
	EndTime    string      `json:"endTime"`
	Purpose    string      `json:"purpose"`
	BookedBy   string      `json:"bookedBy"`
	Passengers string      `json:"passengers"`
	Notes      string      `json:"notes"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		var bookings []models.Booking
		switch {
		case query.Get("vehicleId") != "":
			bookings = s.ledger.ListByVehicle(r.Context(), query.Get("vehicleId"))
		case query.Get("status") != "":
			bookings = s.ledger.ListByStatus(r.Context(), query.Get("status"))
		default:
			bookings = s.ledger.List(r.Context())
		}
		writeJSON(w, http.StatusOK, bookings)

	case http.MethodPost:
		var req bookingCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		id, err := s.ledger.Create(r.Context(), policy.Request{
			VehicleID:  req.VehicleID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Purpose:    req.Purpose,
			BookedBy:   req.BookedBy,
			Passengers: req.Passengers,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, statusForBookingError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type bookingUpdateRequest struct {
	StartDate  *models.Date `json:"startDate"`
	EndDate    *models.Date `json:"endDate"`
	StartTime  *string      `json:"startTime"`
	EndTime    *string      `json:"endTime"`
	Purpose    *string      `json:"purpose"`
	BookedBy   *string      `json:"bookedBy"`
	Passengers *string      `json:"passengers"`
	Notes      *string      `json:"notes"`
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking")

	tail := pathTail(r.URL.Path, "/api/bookings/")
	switch len(tail) {
	case 1:
		s.bookingByID(w, r, tail[0])
	case 2:
		s.bookingAction(w, r, tail[0], tail[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) bookingByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		booking, err := s.ledger.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case http.MethodPatch:
		var req bookingUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		upd := ledger.Update{
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Purpose:    req.Purpose,
			BookedBy:   req.BookedBy,
			Passengers: req.Passengers,
			Notes:      req.Notes,
		}
		if err := s.ledger.Update(r.Context(), id, upd); err != nil {
			writeError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) bookingAction(w http.ResponseWriter, r *http.Request, id, action string) {
	if action == "audit" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.trail == nil {
			writeError(w, http.StatusNotFound, "audit trail is disabled")
			return
		}
		entries, err := s.trail.ListByBooking(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var err error
	switch action {
	case "cancel":
		err = s.ledger.Cancel(r.Context(), id)
	case "complete":
		err = s.ledger.Complete(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func statusForBookingError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, policy.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
