package adaptor

import (
	"context"

	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *MockBookingService) GetBookedSeats(ctx context.Context, flightID string) (*response.BookedSeatsResponse, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookedSeatsResponse), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaginatedResponse[response.BookingResponse]), args.Error(1)
}

func (m *MockBookingService) GetBookingByID(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) SearchFlights(ctx context.Context, req *request.SearchFlightRequest) (*response.PaginatedResponse[response.FlightResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PaginatedResponse[response.FlightResponse]), args.Error(1)
}

func (m *MockFlightService) GetFlightByID(ctx context.Context, flightID string) (*response.FlightResponse, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightResponse), args.Error(1)
}

func (m *MockFlightService) CreateFlight(ctx context.Context, req *request.CreateFlightRequest) (*response.FlightResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightResponse), args.Error(1)
}
