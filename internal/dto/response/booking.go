package response

import (
	"time"

	"flight-booking/internal/data/entity"
)

type PassengerResponse struct {
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Age        int           `json:"age"`
	Gender     entity.Gender `json:"gender"`
	SeatNumber string        `json:"seat_number"`
}

// BookingUser carries only the user fields safe to echo back.
type BookingUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type BookingResponse struct {
	ID               string               `json:"id"`
	BookingReference string               `json:"booking_reference"`
	FlightID         string               `json:"flight_id"`
	UserID           string               `json:"user_id"`
	Passengers       []PassengerResponse  `json:"passengers"`
	TotalSeats       int                  `json:"total_seats"`
	TotalAmount      float64              `json:"total_amount"`
	Status           entity.BookingStatus `json:"status"`
	PaymentStatus    entity.PaymentStatus `json:"payment_status"`
	Flight           *FlightSummary       `json:"flight,omitempty"`
	User             *BookingUser         `json:"user,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type BookedSeatsResponse struct {
	FlightID string   `json:"flight_id"`
	Seats    []string `json:"seats"`
}

// BookingToResponse converts the booking; flight and user are optional enrichments.
func BookingToResponse(booking *entity.Booking, flight *entity.Flight, user *entity.User) BookingResponse {
	passengers := make([]PassengerResponse, len(booking.Passengers))
	for i, p := range booking.Passengers {
		passengers[i] = PassengerResponse{
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Age:        p.Age,
			Gender:     p.Gender,
			SeatNumber: p.SeatNumber,
		}
	}

	resp := BookingResponse{
		ID:               booking.ID.String(),
		BookingReference: booking.BookingReference,
		FlightID:         booking.FlightID.String(),
		UserID:           booking.UserID.String(),
		Passengers:       passengers,
		TotalSeats:       booking.TotalSeats,
		TotalAmount:      booking.TotalAmount,
		Status:           booking.Status,
		PaymentStatus:    booking.PaymentStatus,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}

	if flight != nil {
		summary := FlightToSummary(flight)
		resp.Flight = &summary
	}
	if user != nil {
		resp.User = &BookingUser{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		}
	}

	return resp
}
