package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestSearchFlights_CacheMissStoresResult(t *testing.T) {
	store := newMemStore()
	store.addFlight(4500, 180)
	cache := &MockSearchCache{}
	svc := NewFlightService(&fakeFlightRepo{s: store}, cache, zap.NewNop())

	cache.On("GetSearch", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(false, nil).Once()
	cache.On("SetSearch", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Once()

	result, err := svc.SearchFlights(context.Background(), &request.SearchFlightRequest{Origin: "del", Destination: "bom"})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "AI101", result.Data[0].FlightNumber)
	assert.Equal(t, int64(1), result.Pagination.Total)
	cache.AssertExpectations(t)
}

func TestSearchFlights_CacheHitSkipsStore(t *testing.T) {
	store := newMemStore()
	store.addFlight(4500, 180)
	cache := &MockSearchCache{}
	svc := NewFlightService(&fakeFlightRepo{s: store}, cache, zap.NewNop())

	cache.On("GetSearch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*response.PaginatedResponse[response.FlightResponse])
			*dest = *response.NewPaginatedResponse[response.FlightResponse](nil, 1, 10, 0)
		}).
		Return(true, nil).Once()

	result, err := svc.SearchFlights(context.Background(), &request.SearchFlightRequest{})

	require.NoError(t, err)
	assert.Empty(t, result.Data)
	cache.AssertNotCalled(t, "SetSearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchFlights_CacheErrorsFallBackToStore(t *testing.T) {
	store := newMemStore()
	store.addFlight(4500, 180)
	cache := &MockSearchCache{}
	svc := NewFlightService(&fakeFlightRepo{s: store}, cache, zap.NewNop())

	cache.On("GetSearch", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	cache.On("SetSearch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	result, err := svc.SearchFlights(context.Background(), &request.SearchFlightRequest{})

	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
}

func TestSearchFlights_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  request.SearchFlightRequest
	}{
		{name: "bad date", req: request.SearchFlightRequest{Date: "02-03-2026"}},
		{name: "unknown sort", req: request.SearchFlightRequest{Sort: "cheapest"}},
		{name: "min above max", req: request.SearchFlightRequest{MinPrice: ptr(5000.0), MaxPrice: ptr(1000.0)}},
		{name: "negative price", req: request.SearchFlightRequest{MinPrice: ptr(-1.0)}},
		{name: "long origin", req: request.SearchFlightRequest{Origin: "DELHI"}},
	}

	svc := NewFlightService(&fakeFlightRepo{s: newMemStore()}, nil, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SearchFlights(context.Background(), &tt.req)
			assert.Equal(t, utils.KindValidation, utils.KindOf(err))
		})
	}
}

func TestBuildFlightFilter(t *testing.T) {
	f, err := buildFlightFilter(&request.SearchFlightRequest{
		Origin:           " del",
		Destination:      "Bom",
		Date:             "2026-03-02",
		Airline:          "  IndiGo ",
		PaginatedRequest: request.PaginatedRequest{Page: 3, PerPage: 5},
	})

	require.NoError(t, err)
	assert.Equal(t, "DEL", f.Origin)
	assert.Equal(t, "BOM", f.Destination)
	assert.Equal(t, "IndiGo", f.Airline)
	assert.EqualValues(t, "price_asc", f.Sort)
	require.NotNil(t, f.Date)
	assert.Equal(t, time.March, f.Date.Month())
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 10, f.Offset)
}

func TestSearchCacheKey(t *testing.T) {
	a, err := buildFlightFilter(&request.SearchFlightRequest{Origin: "DEL", Airline: "IndiGo", MinPrice: ptr(100.0)})
	require.NoError(t, err)
	b, err := buildFlightFilter(&request.SearchFlightRequest{Origin: "del", Airline: "indigo", MinPrice: ptr(100.0)})
	require.NoError(t, err)
	c, err := buildFlightFilter(&request.SearchFlightRequest{Origin: "DEL", Airline: "IndiGo", MinPrice: ptr(200.0)})
	require.NoError(t, err)

	assert.Equal(t, searchCacheKey(a), searchCacheKey(b))
	assert.NotEqual(t, searchCacheKey(a), searchCacheKey(c))
}

func TestGetFlightByID(t *testing.T) {
	store := newMemStore()
	flight := store.addFlight(4500, 180)
	svc := NewFlightService(&fakeFlightRepo{s: store}, nil, zap.NewNop())

	got, err := svc.GetFlightByID(context.Background(), flight.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 180, got.AvailableSeats)

	_, err = svc.GetFlightByID(context.Background(), uuid.NewString())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = svc.GetFlightByID(context.Background(), "not-a-uuid")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func validCreateFlightRequest() *request.CreateFlightRequest {
	dep := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	return &request.CreateFlightRequest{
		FlightNumber:  "6e204",
		Airline:       "IndiGo",
		Origin:        "blr",
		Destination:   "maa",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(75 * time.Minute),
		OperatingDays: []int{5, 1, 3, 1},
		Price:         3200,
		TotalSeats:    186,
	}
}

func TestCreateFlight(t *testing.T) {
	store := newMemStore()
	cache := &MockSearchCache{}
	svc := NewFlightService(&fakeFlightRepo{s: store}, cache, zap.NewNop())

	cache.On("InvalidateFlights", mock.Anything).Return(nil).Once()

	got, err := svc.CreateFlight(context.Background(), validCreateFlightRequest())

	require.NoError(t, err)
	assert.Equal(t, "6E204", got.FlightNumber)
	assert.Equal(t, "BLR", got.Origin)
	assert.Equal(t, "MAA", got.Destination)
	assert.Equal(t, 75, got.DurationMinutes)
	assert.Equal(t, []int{1, 3, 5}, got.OperatingDays)
	assert.Equal(t, 186, got.TotalSeats)
	assert.Equal(t, 186, got.AvailableSeats)
	assert.Len(t, store.flights, 1)
	cache.AssertExpectations(t)
}

func TestCreateFlight_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *request.CreateFlightRequest)
	}{
		{name: "same airports", mutate: func(r *request.CreateFlightRequest) { r.Destination = r.Origin }},
		{name: "arrival before departure", mutate: func(r *request.CreateFlightRequest) { r.ArrivalTime = r.DepartureTime.Add(-time.Hour) }},
		{name: "no seats", mutate: func(r *request.CreateFlightRequest) { r.TotalSeats = 0 }},
		{name: "bad weekday", mutate: func(r *request.CreateFlightRequest) { r.OperatingDays = []int{7} }},
		{name: "no operating days", mutate: func(r *request.CreateFlightRequest) { r.OperatingDays = nil }},
		{name: "departs off schedule", mutate: func(r *request.CreateFlightRequest) { r.OperatingDays = []int{0, 6} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewFlightService(&fakeFlightRepo{s: store}, nil, zap.NewNop())
			req := validCreateFlightRequest()
			tt.mutate(req)

			_, err := svc.CreateFlight(context.Background(), req)

			assert.Equal(t, utils.KindValidation, utils.KindOf(err))
			assert.Empty(t, store.flights)
		})
	}
}
