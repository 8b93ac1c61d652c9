package response

import (
	"time"

	"flight-booking/internal/data/entity"
)

type FlightSummary struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Price         float64   `json:"price"`
}

type FlightResponse struct {
	FlightSummary
	DurationMinutes int   `json:"duration_minutes"`
	OperatingDays   []int `json:"operating_days"`
	TotalSeats      int   `json:"total_seats"`
	AvailableSeats  int   `json:"available_seats"`
}

func FlightToSummary(flight *entity.Flight) FlightSummary {
	return FlightSummary{
		ID:            flight.ID.String(),
		FlightNumber:  flight.FlightNumber,
		Airline:       flight.Airline,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		Price:         flight.Price,
	}
}

func FlightToResponse(flight *entity.Flight) FlightResponse {
	return FlightResponse{
		FlightSummary:   FlightToSummary(flight),
		DurationMinutes: flight.DurationMinutes,
		OperatingDays:   flight.OperatingDays,
		TotalSeats:      flight.TotalSeats,
		AvailableSeats:  flight.AvailableSeats,
	}
}
