package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Airlines
	mux.Handle("GET /api/v1/airlines", chain(http.HandlerFunc(h.ListAirlines)))
	mux.Handle("POST /api/v1/airlines", chain(http.HandlerFunc(h.CreateAirline)))

	// Airports
	mux.Handle("GET /api/v1/airports", chain(http.HandlerFunc(h.ListAirports)))
	mux.Handle("POST /api/v1/airports", chain(http.HandlerFunc(h.CreateAirport)))

	// Flights
	mux.Handle("GET /api/v1/flights", chain(http.HandlerFunc(h.ListFlights)))
	mux.Handle("POST /api/v1/flights", chain(http.HandlerFunc(h.CreateFlight)))

	// Exports
	mux.Handle("GET /api/v1/exports", chain(http.HandlerFunc(h.ListExports)))
	mux.Handle("GET /api/v1/exports/{table}", chain(http.HandlerFunc(h.ExportTable)))
	mux.Handle("POST /api/v1/exports/{table}/snapshots", chain(http.HandlerFunc(h.RequestSnapshot)))
}
