package api

import (
	"errors"
	"net/http"

	"fleetbook/internal/metrics"
	"fleetbook/internal/models"
	"fleetbook/internal/registry"
)

func (s *HTTPServer) handleVehicles(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("vehicles")

	switch r.Method {
	case http.MethodGet:
		status := r.URL.Query().Get("status")
		var vehicles []models.Vehicle
		if status != "" {
			vehicles = s.registry.ListByStatus(r.Context(), status)
		} else {
			vehicles = s.registry.List(r.Context())
		}
		writeJSON(w, http.StatusOK, vehicles)

	case http.MethodPost:
		var v models.Vehicle
		if err := decodeBody(r, &v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		id, err := s.registry.Add(r.Context(), v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type vehicleUpdateRequest struct {
	Name         *string `json:"name"`
	Model        *string `json:"model"`
	Image        *string `json:"image"`
	Seats        *int    `json:"seats"`
	FuelType     *string `json:"fuelType"`
	Status       *string `json:"status"`
	LicensePlate *string `json:"licensePlate"`
}

func (s *HTTPServer) handleVehicleByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("vehicle")

	tail := pathTail(r.URL.Path, "/api/vehicles/")
	if len(tail) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := tail[0]

	switch r.Method {
	case http.MethodGet:
		vehicle, err := s.registry.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, vehicle)

	case http.MethodPatch:
		var req vehicleUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		upd := registry.Update{
			Name:         req.Name,
			Model:        req.Model,
			Image:        req.Image,
			Seats:        req.Seats,
			FuelType:     req.FuelType,
			Status:       req.Status,
			LicensePlate: req.LicensePlate,
		}
		if err := s.registry.Update(r.Context(), id, upd); err != nil {
			writeError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})

	case http.MethodDelete:
		if err := s.registry.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func statusForError(err error) int {
	if errors.Is(err, models.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
