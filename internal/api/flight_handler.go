package api

import (
	"net/http"

	"github.com/shaiso/Aerodata/internal/domain"
)

// ListFlights возвращает список всех рейсов.
// GET /api/v1/flights
//
// Для больших выборок предназначен GET /api/v1/exports/flights.
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.flights.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}
	if flights == nil {
		flights = []domain.Flight{}
	}

	List(w, flights, len(flights))
}

// CreateFlight создаёт новый рейс.
// POST /api/v1/flights
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req CreateFlightRequest
	if err := decodeCreate(w, r, domain.FlightRequiredFields, &req); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	flight, err := req.ToDomain()
	if err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	if err := h.flights.Create(r.Context(), &flight); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, flight)
}
