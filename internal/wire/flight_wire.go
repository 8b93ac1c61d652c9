package wire

import (
	"flight-booking/internal/adaptor"
	"flight-booking/internal/data/repository"
	"flight-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireFlight(
	r chi.Router,
	flightHandler *adaptor.FlightHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/flights", func(r chi.Router) {
		r.Get("/", flightHandler.SearchFlights)                   // GET /api/flights?origin=DEL&destination=BOM&date=2026-03-01
		r.Get("/{id}", flightHandler.GetFlightByID)               // GET /api/flights/{flight-id}
		r.Get("/{id}/booked-seats", flightHandler.GetBookedSeats) // GET /api/flights/{flight-id}/booked-seats
	})

	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.AuthSession(repo.Session, log),
		middleware.Admin(repo.User, log),
	).Post("/api/admin/flights", flightHandler.CreateFlight)
}
