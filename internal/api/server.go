// Package api exposes the registry, ledger and policy operations as a JSON
// HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"fleetbook/internal/audit"
	"fleetbook/internal/ledger"
	"fleetbook/internal/registry"
)

// HTTPServer routes API requests to the core components.
type HTTPServer struct {
	mux      *http.ServeMux
	registry *registry.Registry
	ledger   *ledger.Ledger
	trail    *audit.Trail // nil when audit is disabled
	limiter  *rate.Limiter
	log      *zerolog.Logger
}

// RateLimit configures the request limiter.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// NewHTTPServer builds the API server. trail may be nil.
func NewHTTPServer(reg *registry.Registry, led *ledger.Ledger, trail *audit.Trail, rl RateLimit, logger *zerolog.Logger) *HTTPServer {
	if rl.PerSecond <= 0 {
		rl.PerSecond = 20
	}
	if rl.Burst <= 0 {
		rl.Burst = 40
	}
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		registry: reg,
		ledger:   led,
		trail:    trail,
		limiter:  rate.NewLimiter(rate.Limit(rl.PerSecond), rl.Burst),
		log:      logger,
	}
	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.mux.HandleFunc("/api/vehicles", s.handleVehicles)
	s.mux.HandleFunc("/api/vehicles/", s.handleVehicleByID)
	s.mux.HandleFunc("/api/bookings", s.handleBookings)
	s.mux.HandleFunc("/api/bookings/", s.handleBookingByID)
	s.mux.HandleFunc("/api/calendar/day", s.handleCalendarDay)
	s.mux.HandleFunc("/api/end-time-options", s.handleEndTimeOptions)
	s.mux.HandleFunc("/api/reports/bookings.xlsx", s.handleBookingsReport)
}

// ServeHTTP applies the rate limit before dispatching.
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// pathTail returns the path segments after prefix, e.g.
// "/api/bookings/b1/cancel" with prefix "/api/bookings/" yields
// ["b1", "cancel"].
func pathTail(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || rest == "" {
		return nil
	}
	return strings.Split(strings.Trim(rest, "/"), "/")
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
