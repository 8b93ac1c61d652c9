package usecase

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore backs the flight and booking fakes with one mutex so the seat
// decrement and booking insert behave like the database transaction.
type memStore struct {
	mu       sync.Mutex
	flights  map[uuid.UUID]*entity.Flight
	bookings map[uuid.UUID]*entity.Booking

	// errors returned by the next CreateWithSeatReservation calls
	createErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		flights:  make(map[uuid.UUID]*entity.Flight),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
}

func (s *memStore) addFlight(price float64, seats int) *entity.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	dep := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	f := &entity.Flight{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		FlightNumber:    "AI101",
		Airline:         "Air India",
		Origin:          "DEL",
		Destination:     "BOM",
		DepartureTime:   dep,
		ArrivalTime:     dep.Add(2 * time.Hour),
		DurationMinutes: 120,
		OperatingDays:   []int{1},
		Price:           price,
		TotalSeats:      seats,
		AvailableSeats:  seats,
	}
	s.flights[f.ID] = f
	return f
}

func (s *memStore) available(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flights[id].AvailableSeats
}

func (s *memStore) removeFlight(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flights, id)
}

type fakeFlightRepo struct{ s *memStore }

func (r *fakeFlightRepo) Create(_ context.Context, flight *entity.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *flight
	r.s.flights[flight.ID] = &cp
	return nil
}

func (r *fakeFlightRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFlightRepo) Search(_ context.Context, _ repository.FlightFilter) ([]*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Flight
	for _, f := range r.s.flights {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeFlightRepo) CountSearch(_ context.Context, _ repository.FlightFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.flights)), nil
}

type fakeBookingRepo struct{ s *memStore }

func (r *fakeBookingRepo) CreateWithSeatReservation(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.createErrs) > 0 {
		err := r.s.createErrs[0]
		r.s.createErrs = r.s.createErrs[1:]
		if err != nil {
			return err
		}
	}

	f, ok := r.s.flights[booking.FlightID]
	if !ok || f.AvailableSeats < booking.TotalSeats {
		return repository.ErrInsufficientSeats
	}
	if held := r.seatsLocked(booking.FlightID, (*entity.Booking).IsActive, booking.SeatNumbers()); len(held) > 0 {
		return &repository.SeatsHeldError{Seats: held}
	}
	f.AvailableSeats -= booking.TotalSeats

	cp := *booking
	cp.Passengers = slices.Clone(booking.Passengers)
	r.s.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) CancelWithSeatRelease(_ context.Context, booking *entity.Booking) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.bookings[booking.ID]
	if !ok || stored.Status == entity.BookingStatusCancelled {
		return false, repository.ErrAlreadyCancelled
	}
	stored.Status = entity.BookingStatusCancelled
	booking.Status = entity.BookingStatusCancelled

	f, ok := r.s.flights[booking.FlightID]
	if !ok {
		return false, nil
	}
	f.AvailableSeats = min(f.TotalSeats, f.AvailableSeats+booking.TotalSeats)
	return true, nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (r *fakeBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindConfirmedSeatNumbers(_ context.Context, flightID uuid.UUID) ([]string, error) {
	return r.seats(flightID, func(b *entity.Booking) bool { return b.Status == entity.BookingStatusConfirmed }, nil), nil
}

func (r *fakeBookingRepo) FindHeldSeatNumbers(_ context.Context, flightID uuid.UUID, seats []string) ([]string, error) {
	return r.seats(flightID, func(b *entity.Booking) bool { return b.IsActive() }, seats), nil
}

func (r *fakeBookingRepo) seats(flightID uuid.UUID, keep func(*entity.Booking) bool, only []string) []string {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.seatsLocked(flightID, keep, only)
}

func (r *fakeBookingRepo) seatsLocked(flightID uuid.UUID, keep func(*entity.Booking) bool, only []string) []string {
	set := make(map[string]struct{})
	for _, b := range r.s.bookings {
		if b.FlightID != flightID || !keep(b) {
			continue
		}
		for _, seat := range b.SeatNumbers() {
			if only == nil || slices.Contains(only, seat) {
				set[seat] = struct{}{}
			}
		}
	}

	out := []string{}
	for seat := range set {
		out = append(out, seat)
	}
	sort.Strings(out)
	return out
}

// gatedBookingRepo holds every caller of FindHeldSeatNumbers until all
// expected callers have passed the pre-check.
type gatedBookingRepo struct {
	*fakeBookingRepo
	gate sync.WaitGroup
}

func (r *gatedBookingRepo) FindHeldSeatNumbers(ctx context.Context, flightID uuid.UUID, seats []string) ([]string, error) {
	held, err := r.fakeBookingRepo.FindHeldSeatNumbers(ctx, flightID, seats)
	r.gate.Done()
	r.gate.Wait()
	return held, err
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email }), nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *fakeUserRepo) find(match func(*entity.User) bool) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeletedAt == nil && match(u) {
			return u
		}
	}
	return nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	all, _ := r.FindAll(ctx, 1<<30, 0)
	return int64(len(all)), nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionRepository) CleanExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockSeatLocker struct {
	mock.Mock
}

func (m *MockSeatLocker) AcquireFlightLock(ctx context.Context, flightID uuid.UUID, token string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, flightID, token, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatLocker) ReleaseFlightLock(ctx context.Context, flightID uuid.UUID, token string) error {
	args := m.Called(ctx, flightID, token)
	return args.Error(0)
}

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) GetSearch(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockSearchCache) SetSearch(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSearchCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}
