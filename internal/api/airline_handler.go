package api

import (
	"net/http"

	"github.com/shaiso/Aerodata/internal/domain"
)

// ListAirlines возвращает список всех авиакомпаний.
// GET /api/v1/airlines
func (h *Handler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := h.airlines.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}
	if airlines == nil {
		airlines = []domain.Airline{}
	}

	List(w, airlines, len(airlines))
}

// CreateAirline создаёт новую авиакомпанию.
// POST /api/v1/airlines
func (h *Handler) CreateAirline(w http.ResponseWriter, r *http.Request) {
	var req CreateAirlineRequest
	if err := decodeCreate(w, r, domain.AirlineRequiredFields, &req); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	airline := req.ToDomain()
	if err := h.airlines.Create(r.Context(), &airline); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, airline)
}
