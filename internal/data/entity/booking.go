package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Passenger is stored inside the booking's passengers JSONB document.
type Passenger struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Age        int    `json:"age"`
	Gender     Gender `json:"gender"`
	SeatNumber string `json:"seat_number"`
}

const seatsPerRow = 6

// AutoSeatNumber maps a passenger index to a seat: 0..5 -> 1A..1F, 6 -> 2A.
func AutoSeatNumber(index int) string {
	row := index/seatsPerRow + 1
	column := rune('A' + index%seatsPerRow)
	return fmt.Sprintf("%d%c", row, column)
}

// AssignMissingSeats fills empty seat numbers from the passenger's position.
func AssignMissingSeats(passengers []Passenger) {
	for i := range passengers {
		if passengers[i].SeatNumber == "" {
			passengers[i].SeatNumber = AutoSeatNumber(i)
		}
	}
}

type Booking struct {
	BaseNoDelete
	BookingReference string        `db:"booking_reference"`
	UserID           uuid.UUID     `db:"user_id"`
	FlightID         uuid.UUID     `db:"flight_id"`
	Passengers       []Passenger   `db:"passengers"`
	TotalSeats       int           `db:"total_seats"`
	TotalAmount      float64       `db:"total_amount"`
	Status           BookingStatus `db:"status"`
	PaymentStatus    PaymentStatus `db:"payment_status"`
}

// NewBooking builds a confirmed, paid booking for the flight. Seat numbers
// missing from passengers are auto-assigned; totals derive from the list.
func NewBooking(userID uuid.UUID, flight *Flight, passengers []Passenger, reference string, now time.Time) *Booking {
	AssignMissingSeats(passengers)

	return &Booking{
		BaseNoDelete: BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingReference: reference,
		UserID:           userID,
		FlightID:         flight.ID,
		Passengers:       passengers,
		TotalSeats:       len(passengers),
		TotalAmount:      flight.Price * float64(len(passengers)),
		Status:           BookingStatusConfirmed,
		PaymentStatus:    PaymentStatusPaid,
	}
}

func (b *Booking) SeatNumbers() []string {
	seats := make([]string, len(b.Passengers))
	for i, p := range b.Passengers {
		seats[i] = p.SeatNumber
	}
	return seats
}

func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}
