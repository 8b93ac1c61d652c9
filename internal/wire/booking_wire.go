package wire

import (
	"flight-booking/internal/adaptor"
	"flight-booking/internal/data/repository"
	"flight-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/bookings - book seats on a flight
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/user/bookings - booking history, newest first
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/{id} - own booking details
		r.Get("/api/bookings/{id}", bookingHandler.GetBookingByID)

		// PUT /api/bookings/{id}/cancel - cancel own booking and release seats
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
	})
}
