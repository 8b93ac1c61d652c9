package usecase

import (
	"context"
	"errors"
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

const (
	lockRetryInterval    = 50 * time.Millisecond
	maxReferenceAttempts = 3
	defaultLockTTL       = 10 * time.Second
	defaultLockWait      = 2 * time.Second
	defaultBookingTopic  = "booking-events"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	GetBookedSeats(ctx context.Context, flightID string) (*response.BookedSeatsResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	users    repository.UserRepository

	locker SeatLocker
	cache  SearchCache
	events EventPublisher

	topic    string
	lockTTL  time.Duration
	lockWait time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) BookingService {
	s := &bookingService{
		flights:  repo.Flight,
		bookings: repo.Booking,
		users:    repo.User,
		locker:   deps.Locker,
		cache:    deps.Cache,
		events:   deps.Events,
		topic:    defaultBookingTopic,
		lockTTL:  defaultLockTTL,
		lockWait: defaultLockWait,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With(zap.String("service", "booking")),
	}

	if config != nil {
		if config.Kafka.BookingTopic != "" {
			s.topic = config.Kafka.BookingTopic
		}
		if config.Booking.LockTTL > 0 {
			s.lockTTL = config.Booking.LockTTL
		}
		if config.Booking.LockWait > 0 {
			s.lockWait = config.Booking.LockWait
		}
	}

	return s
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	flightID, err := uuid.Parse(req.FlightID)
	if err != nil {
		return nil, utils.NewValidation("invalid flight ID %s", req.FlightID)
	}

	passengers := toPassengers(req.Passengers)
	if err := checkPassengerNames(passengers); err != nil {
		return nil, err
	}
	entity.AssignMissingSeats(passengers)

	unlock, err := s.lockFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 1. flight exists
	flight, err := s.flights.FindByID(ctx, flightID)
	if err != nil {
		return nil, utils.NewInternal("failed to load flight", err)
	}
	if flight == nil {
		return nil, utils.NewNotFound("flight %s not found", req.FlightID)
	}

	// 2. capacity
	if !flight.HasCapacity(len(passengers)) {
		return nil, utils.NewCapacity("Only %d seats available", flight.AvailableSeats)
	}

	// 3. no duplicate seat inside the request
	if seat := firstDuplicateSeat(passengers); seat != "" {
		return nil, utils.NewConflict("seat %s is requested more than once", seat)
	}

	// 4. no seat held by an active booking
	seats := make([]string, len(passengers))
	for i, p := range passengers {
		seats[i] = p.SeatNumber
	}
	held, err := s.bookings.FindHeldSeatNumbers(ctx, flightID, seats)
	if err != nil {
		return nil, utils.NewInternal("failed to check seat availability", err)
	}
	if len(held) > 0 {
		return nil, utils.NewConflict("seats already booked: %s", strings.Join(held, ", "))
	}

	booking, err := s.persistBooking(ctx, userID, flight, passengers)
	if err != nil {
		return nil, err
	}

	flight.AvailableSeats -= booking.TotalSeats

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to load booking owner", zap.Error(err), zap.String("user_id", userID.String()))
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_reference", booking.BookingReference),
		zap.String("user_id", userID.String()),
		zap.String("flight_id", flightID.String()),
		zap.Strings("seats", seats),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	s.afterWrite(ctx, entity.EventBookingCreated, booking)

	resp := response.BookingToResponse(booking, flight, user)
	return &resp, nil
}

// persistBooking writes the booking and the seat decrement atomically,
// regenerating the reference on the rare collision.
func (s *bookingService) persistBooking(ctx context.Context, userID uuid.UUID, flight *entity.Flight, passengers []entity.Passenger) (*entity.Booking, error) {
	for attempt := 1; ; attempt++ {
		now := s.now()
		booking := entity.NewBooking(userID, flight, passengers, utils.GenerateBookingReference(now), now)

		err := s.bookings.CreateWithSeatReservation(ctx, booking)
		switch {
		case err == nil:
			return booking, nil

		case errors.Is(err, repository.ErrInsufficientSeats):
			// another writer took the seats between the check and the write
			current, ferr := s.flights.FindByID(ctx, flight.ID)
			if ferr != nil {
				return nil, utils.NewInternal("failed to load flight", ferr)
			}
			if current == nil {
				return nil, utils.NewNotFound("flight %s not found", flight.ID)
			}
			return nil, utils.NewCapacity("Only %d seats available", current.AvailableSeats)

		case errors.Is(err, repository.ErrSeatsHeld):
			// a concurrent booking committed one of these seats first
			var held *repository.SeatsHeldError
			if errors.As(err, &held) {
				return nil, utils.NewConflict("seats already booked: %s", strings.Join(held.Seats, ", "))
			}
			return nil, utils.NewConflict("seats already booked")

		case errors.Is(err, repository.ErrDuplicateReference) && attempt < maxReferenceAttempts:
			s.log.Warn("Booking reference collision, regenerating",
				zap.String("booking_reference", booking.BookingReference))

		default:
			return nil, utils.NewInternal("failed to create booking", err)
		}
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, utils.NewValidation("invalid booking ID %s", bookingID)
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternal("failed to load booking", err)
	}
	if booking == nil {
		return nil, utils.NewNotFound("booking %s not found", bookingID)
	}

	if !booking.IsOwnedBy(userID) {
		s.log.Warn("Cancel attempt by non-owner",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID.String()))
		return nil, utils.NewForbidden("booking %s belongs to another user", bookingID)
	}

	if !booking.IsActive() {
		return nil, utils.NewConflict("booking %s is already cancelled", booking.BookingReference)
	}

	restored, err := s.bookings.CancelWithSeatRelease(ctx, booking)
	if errors.Is(err, repository.ErrAlreadyCancelled) {
		return nil, utils.NewConflict("booking %s is already cancelled", booking.BookingReference)
	}
	if err != nil {
		return nil, utils.NewInternal("failed to cancel booking", err)
	}

	if !restored {
		// The flight was removed after this booking was made. The cancellation
		// stands; there is no seat counter left to restore.
		s.log.Warn("Flight missing on cancel, seat restoration skipped",
			zap.String("booking_id", bookingID),
			zap.String("flight_id", booking.FlightID.String()))
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("booking_reference", booking.BookingReference),
		zap.Int("seats_released", booking.TotalSeats),
		zap.Bool("seats_restored", restored),
	)

	s.afterWrite(ctx, entity.EventBookingCancelled, booking)

	flight, err := s.flights.FindByID(ctx, booking.FlightID)
	if err != nil {
		s.log.Warn("Failed to load flight for response", zap.Error(err))
	}

	resp := response.BookingToResponse(booking, flight, nil)
	return &resp, nil
}

func (s *bookingService) GetBookedSeats(ctx context.Context, flightID string) (*response.BookedSeatsResponse, error) {
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

	seats, err := s.bookings.FindConfirmedSeatNumbers(ctx, id)
	if err != nil {
		return nil, utils.NewInternal("failed to load booked seats", err)
	}
	if seats == nil {
		seats = []string{}
	}

	return &response.BookedSeatsResponse{
		FlightID: flightID,
		Seats:    seats,
	}, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	page := req.Normalized()

	bookings, err := s.bookings.FindByUserID(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, utils.NewInternal("failed to get user bookings", err)
	}

	total, err := s.bookings.CountByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternal("failed to count user bookings", err)
	}

	flights := make(map[uuid.UUID]*entity.Flight)
	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		flight, seen := flights[booking.FlightID]
		if !seen {
			flight, err = s.flights.FindByID(ctx, booking.FlightID)
			if err != nil {
				s.log.Warn("Failed to load flight for booking list",
					zap.Error(err), zap.String("flight_id", booking.FlightID.String()))
			}
			flights[booking.FlightID] = flight
		}
		items[i] = response.BookingToResponse(booking, flight, nil)
	}

	s.log.Debug("User bookings retrieved",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(bookings)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(items, page.Page, page.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, utils.NewValidation("invalid booking ID %s", bookingID)
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternal("failed to load booking", err)
	}
	if booking == nil {
		return nil, utils.NewNotFound("booking %s not found", bookingID)
	}
	if !booking.IsOwnedBy(userID) {
		return nil, utils.NewForbidden("booking %s belongs to another user", bookingID)
	}

	flight, err := s.flights.FindByID(ctx, booking.FlightID)
	if err != nil {
		return nil, utils.NewInternal("failed to load flight", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternal("failed to load user", err)
	}

	resp := response.BookingToResponse(booking, flight, user)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// lockFlight waits up to lockWait for the per-flight lock. The returned
// func releases it.
func (s *bookingService) lockFlight(ctx context.Context, flightID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	deadline := time.Now().Add(s.lockWait)

	for {
		ok, err := s.locker.AcquireFlightLock(ctx, flightID, token, s.lockTTL)
		if err != nil {
			return nil, utils.NewInternal("failed to lock flight", err)
		}
		if ok {
			return func() {
				if err := s.locker.ReleaseFlightLock(context.WithoutCancel(ctx), flightID, token); err != nil {
					s.log.Warn("Failed to release flight lock",
						zap.Error(err), zap.String("flight_id", flightID.String()))
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, utils.NewConflict("flight %s is busy, please retry", flightID)
		}

		select {
		case <-ctx.Done():
			return nil, utils.NewInternal("lock wait cancelled", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

// afterWrite drops cached searches and publishes the event. Failures are
// logged only; the booking is already committed.
func (s *bookingService) afterWrite(ctx context.Context, eventType entity.BookingEventType, booking *entity.Booking) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("Failed to invalidate flight search cache", zap.Error(err))
		}
	}

	if s.events != nil {
		event := entity.NewBookingEvent(eventType, booking, s.now())
		if err := s.events.Publish(ctx, s.topic, booking.ID.String(), event); err != nil {
			s.log.Warn("Failed to publish booking event",
				zap.Error(err),
				zap.String("type", string(eventType)),
				zap.String("booking_id", booking.ID.String()))
		}
	}
}

func toPassengers(reqs []request.PassengerRequest) []entity.Passenger {
	passengers := make([]entity.Passenger, len(reqs))
	for i, p := range reqs {
		passengers[i] = entity.Passenger{
			FirstName:  strings.TrimSpace(p.FirstName),
			LastName:   strings.TrimSpace(p.LastName),
			Age:        p.Age,
			Gender:     entity.Gender(p.Gender),
			SeatNumber: strings.ToUpper(strings.TrimSpace(p.SeatNumber)),
		}
	}
	return passengers
}

// checkPassengerNames rejects names that were only whitespace.
func checkPassengerNames(passengers []entity.Passenger) error {
	for i, p := range passengers {
		if p.FirstName == "" {
			return utils.NewValidation("validation failed: passengers[%d].first_name is required", i)
		}
		if p.LastName == "" {
			return utils.NewValidation("validation failed: passengers[%d].last_name is required", i)
		}
	}
	return nil
}

func firstDuplicateSeat(passengers []entity.Passenger) string {
	seen := make(map[string]struct{}, len(passengers))
	for _, p := range passengers {
		if _, ok := seen[p.SeatNumber]; ok {
			return p.SeatNumber
		}
		seen[p.SeatNumber] = struct{}{}
	}
	return ""
}
