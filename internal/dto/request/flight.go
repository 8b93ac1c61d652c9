package request

import "time"

type SearchFlightRequest struct {
	Origin      string   `json:"origin" validate:"omitempty,alpha,len=3"`
	Destination string   `json:"destination" validate:"omitempty,alpha,len=3"`
	Date        string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	MinPrice    *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice    *float64 `json:"max_price" validate:"omitempty,gte=0"`
	Airline     string   `json:"airline" validate:"omitempty,max=100"`
	Sort        string   `json:"sort" validate:"omitempty,oneof=price_asc price_desc departure_asc departure_desc duration_asc"`
	PaginatedRequest
}

type CreateFlightRequest struct {
	FlightNumber    string    `json:"flight_number" validate:"required,alphanum,max=10"`
	Airline         string    `json:"airline" validate:"required,max=100"`
	Origin          string    `json:"origin" validate:"required,alpha,len=3"`
	Destination     string    `json:"destination" validate:"required,alpha,len=3,nefield=Origin"`
	DepartureTime   time.Time `json:"departure_time" validate:"required"`
	ArrivalTime     time.Time `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,gte=1"`
	OperatingDays   []int     `json:"operating_days" validate:"required,min=1,max=7,dive,gte=0,lte=6"`
	Price           float64   `json:"price" validate:"gte=0"`
	TotalSeats      int       `json:"total_seats" validate:"required,gte=1"`
}
