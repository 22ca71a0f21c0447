package api

import (
	"net/http"

	"github.com/shaiso/Aerodata/internal/domain"
)

// ListAirports возвращает список всех аэропортов.
// GET /api/v1/airports
func (h *Handler) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.airports.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}
	if airports == nil {
		airports = []domain.Airport{}
	}

	List(w, airports, len(airports))
}

// CreateAirport создаёт новый аэропорт.
// POST /api/v1/airports
func (h *Handler) CreateAirport(w http.ResponseWriter, r *http.Request) {
	var req CreateAirportRequest
	if err := decodeCreate(w, r, domain.AirportRequiredFields, &req); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	airport := req.ToDomain()
	if err := h.airports.Create(r.Context(), &airport); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, airport)
}
