package usecase

import (
	"context"
	"time"

	"flight-booking/internal/data/repository"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatLocker serialises booking creation per flight across API replicas.
type SeatLocker interface {
	AcquireFlightLock(ctx context.Context, flightID uuid.UUID, token string, ttl time.Duration) (bool, error)
	ReleaseFlightLock(ctx context.Context, flightID uuid.UUID, token string) error
}

// SearchCache stores flight search pages.
type SearchCache interface {
	GetSearch(ctx context.Context, key string, dest any) (bool, error)
	SetSearch(ctx context.Context, key string, value any) error
	InvalidateFlights(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Deps holds the optional infrastructure; nil members are skipped.
type Deps struct {
	Locker SeatLocker
	Cache  SearchCache
	Events EventPublisher
}

type Service struct {
	Auth         AuthService
	User         UserService
	Flight       FlightService
	Booking      BookingService
	Notification NotificationService
}

func NewService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo, log),
		Flight:       NewFlightService(repo.Flight, deps.Cache, log),
		Booking:      NewBookingService(repo, deps, config, log),
		Notification: NewNotificationService(repo.User, log),
	}
}
