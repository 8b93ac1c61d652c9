package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const searchDateLayout = "2006-01-02"

type FlightService interface {
	SearchFlights(ctx context.Context, req *request.SearchFlightRequest) (*response.PaginatedResponse[response.FlightResponse], error)
	GetFlightByID(ctx context.Context, flightID string) (*response.FlightResponse, error)

	// Admin import
	CreateFlight(ctx context.Context, req *request.CreateFlightRequest) (*response.FlightResponse, error)
}

type flightService struct {
	flights repository.FlightRepository
	cache   SearchCache
	log     *zap.Logger
}

func NewFlightService(flights repository.FlightRepository, cache SearchCache, log *zap.Logger) FlightService {
	return &flightService{
		flights: flights,
		cache:   cache,
		log:     log.With(zap.String("service", "flight")),
	}
}

func (s *flightService) SearchFlights(ctx context.Context, req *request.SearchFlightRequest) (*response.PaginatedResponse[response.FlightResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Search flights validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter, err := buildFlightFilter(req)
	if err != nil {
		return nil, err
	}
	page := req.PaginatedRequest.Normalized()

	key := searchCacheKey(filter)
	if s.cache != nil {
		var cached response.PaginatedResponse[response.FlightResponse]
		found, err := s.cache.GetSearch(ctx, key, &cached)
		if err != nil {
			s.log.Warn("Flight search cache read failed", zap.Error(err))
		}
		if found {
			return &cached, nil
		}
	}

	flights, err := s.flights.Search(ctx, filter)
	if err != nil {
		return nil, utils.NewInternal("failed to search flights", err)
	}

	total, err := s.flights.CountSearch(ctx, filter)
	if err != nil {
		return nil, utils.NewInternal("failed to count flights", err)
	}

	items := make([]response.FlightResponse, len(flights))
	for i, flight := range flights {
		items[i] = response.FlightToResponse(flight)
	}
	result := response.NewPaginatedResponse(items, page.Page, page.PerPage, total)

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, key, result); err != nil {
			s.log.Warn("Flight search cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

func (s *flightService) GetFlightByID(ctx context.Context, flightID string) (*response.FlightResponse, error) {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return nil, utils.NewValidation("invalid flight ID %s", flightID)
	}

	flight, err := s.flights.FindByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternal("failed to load flight", err)
	}
	if flight == nil {
		return nil, utils.NewNotFound("flight %s not found", flightID)
	}

	resp := response.FlightToResponse(flight)
	return &resp, nil
}

func (s *flightService) CreateFlight(ctx context.Context, req *request.CreateFlightRequest) (*response.FlightResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create flight validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = int(req.ArrivalTime.Sub(req.DepartureTime).Minutes())
	}

	days := slices.Clone(req.OperatingDays)
	slices.Sort(days)
	days = slices.Compact(days)

	now := time.Now().UTC()
	flight := &entity.Flight{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FlightNumber:    strings.ToUpper(req.FlightNumber),
		Airline:         strings.TrimSpace(req.Airline),
		Origin:          entity.NormalizeAirportCode(req.Origin),
		Destination:     entity.NormalizeAirportCode(req.Destination),
		DepartureTime:   req.DepartureTime.UTC(),
		ArrivalTime:     req.ArrivalTime.UTC(),
		DurationMinutes: duration,
		OperatingDays:   days,
		Price:           req.Price,
		TotalSeats:      req.TotalSeats,
		AvailableSeats:  req.TotalSeats,
	}

	if !flight.OperatesOn(flight.DepartureTime.Weekday()) {
		return nil, utils.NewValidation("departure on %s is not one of the operating days",
			flight.DepartureTime.Weekday())
	}

	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, utils.NewInternal("failed to create flight", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("Failed to invalidate flight search cache", zap.Error(err))
		}
	}

	s.log.Info("Flight created",
		zap.String("flight_id", flight.ID.String()),
		zap.String("flight_number", flight.FlightNumber),
		zap.String("route", flight.Origin+"-"+flight.Destination),
	)

	resp := response.FlightToResponse(flight)
	return &resp, nil
}

func buildFlightFilter(req *request.SearchFlightRequest) (repository.FlightFilter, error) {
	page := req.PaginatedRequest.Normalized()

	filter := repository.FlightFilter{
		Origin:      entity.NormalizeAirportCode(req.Origin),
		Destination: entity.NormalizeAirportCode(req.Destination),
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Airline:     strings.TrimSpace(req.Airline),
		Sort:        repository.FlightSort(req.Sort),
		Limit:       page.Limit(),
		Offset:      page.Offset(),
	}

	if filter.Sort == "" {
		filter.Sort = repository.SortPriceAsc
	}
	if !repository.ValidFlightSort(filter.Sort) {
		return filter, utils.NewValidation("unknown sort %q", req.Sort)
	}

	if req.Date != "" {
		date, err := time.Parse(searchDateLayout, req.Date)
		if err != nil {
			return filter, utils.NewValidation("date must be in YYYY-MM-DD format")
		}
		filter.Date = &date
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return filter, utils.NewValidation("min_price must not exceed max_price")
	}

	return filter, nil
}

// searchCacheKey is stable for equal filters.
func searchCacheKey(f repository.FlightFilter) string {
	var date, minPrice, maxPrice string
	if f.Date != nil {
		date = f.Date.Format(searchDateLayout)
	}
	if f.MinPrice != nil {
		minPrice = fmt.Sprintf("%g", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%g", *f.MaxPrice)
	}

	return fmt.Sprintf("o=%s|d=%s|date=%s|min=%s|max=%s|a=%s|s=%s|l=%d|off=%d",
		f.Origin, f.Destination, date, minPrice, maxPrice,
		strings.ToLower(f.Airline), f.Sort, f.Limit, f.Offset)
}
