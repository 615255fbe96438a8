package api

import (
	"net/http"

	"fleetbook/internal/metrics"
	"fleetbook/internal/models"
	"fleetbook/internal/policy"
	"fleetbook/internal/report"
)

// handleCalendarDay answers the calendar view queries for a single day:
// whether the day gets a highlight mark and which bookings are listed for
// it. The two use different matching rules, so both are returned.
func (s *HTTPServer) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar_day")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	day, err := models.ParseDate(query.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	vehicleID := query.Get("vehicleId")

	bookings := s.ledger.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"date":       day,
		"hasBooking": policy.DayHasBooking(bookings, day, vehicleID),
		"bookings":   policy.BookingsOnDay(bookings, day, vehicleID),
	})
}

// handleEndTimeOptions returns the end times selectable for a chosen start
// time. endDate defaults to startDate, matching the booking form.
func (s *HTTPServer) handleEndTimeOptions(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("end_time_options")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	startTime := query.Get("startTime")
	if !policy.OnGrid(startTime) {
		writeError(w, http.StatusBadRequest, "startTime must be a HH:MM quarter-hour mark")
		return
	}

	sameDay := true
	if query.Get("startDate") != "" && query.Get("endDate") != "" {
		start, err := models.ParseDate(query.Get("startDate"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate: "+err.Error())
			return
		}
		end, err := models.ParseDate(query.Get("endDate"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate: "+err.Error())
			return
		}
		sameDay = start.Equal(end)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"options": policy.EndTimeOptions(startTime, sameDay),
	})
}

func (s *HTTPServer) handleBookingsReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_report")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings := s.ledger.List(r.Context())

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := report.WriteBookings(w, bookings); err != nil {
		s.log.Error().Err(err).Msg("bookings report failed")
	}
}
