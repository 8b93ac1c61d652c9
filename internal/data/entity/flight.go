package entity

import (
	"slices"
	"strings"
	"time"
)

type Flight struct {
	BaseNoDelete
	FlightNumber    string    `db:"flight_number"`
	Airline         string    `db:"airline"`
	Origin          string    `db:"origin"`
	Destination     string    `db:"destination"`
	DepartureTime   time.Time `db:"departure_time"`
	ArrivalTime     time.Time `db:"arrival_time"`
	DurationMinutes int       `db:"duration_minutes"`
	OperatingDays   []int     `db:"operating_days"`
	Price           float64   `db:"price"`
	TotalSeats      int       `db:"total_seats"`
	AvailableSeats  int       `db:"available_seats"`
}

// NormalizeAirportCode upper-cases and trims an IATA-style code.
func NormalizeAirportCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// OperatesOn reports whether the flight's weekday set contains day.
func (f *Flight) OperatesOn(day time.Weekday) bool {
	return slices.Contains(f.OperatingDays, int(day))
}

func (f *Flight) HasCapacity(seats int) bool {
	return f.AvailableSeats >= seats
}
