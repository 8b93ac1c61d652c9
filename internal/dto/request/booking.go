package request

type PassengerRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Age        int    `json:"age" validate:"required,gte=1,lte=130"`
	Gender     string `json:"gender" validate:"required,oneof=Male Female Other"`
	SeatNumber string `json:"seat_number,omitempty" validate:"omitempty,alphanum,max=4"`
}

type CreateBookingRequest struct {
	FlightID   string             `json:"flight_id" validate:"required,uuid"`
	Passengers []PassengerRequest `json:"passengers" validate:"required,min=1,dive"`
}
