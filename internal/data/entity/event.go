package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingCancelled BookingEventType = "booking.cancelled"
)

// BookingEvent is published after a booking is created or cancelled.
type BookingEvent struct {
	Type             BookingEventType `json:"type"`
	BookingID        uuid.UUID        `json:"booking_id"`
	BookingReference string           `json:"booking_reference"`
	UserID           uuid.UUID        `json:"user_id"`
	FlightID         uuid.UUID        `json:"flight_id"`
	Seats            []string         `json:"seats"`
	TotalAmount      float64          `json:"total_amount"`
	Status           BookingStatus    `json:"status"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

func NewBookingEvent(eventType BookingEventType, booking *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		UserID:           booking.UserID,
		FlightID:         booking.FlightID,
		Seats:            booking.SeatNumbers(),
		TotalAmount:      booking.TotalAmount,
		Status:           booking.Status,
		OccurredAt:       at,
	}
}
