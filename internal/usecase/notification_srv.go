package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"

	"go.uber.org/zap"
)

// NotificationService turns booking events into user notifications. Delivery
// is a structured log line; there is no mail transport.
type NotificationService interface {
	HandleBookingEvent(ctx context.Context, payload []byte) error
}

type notificationService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewNotificationService(users repository.UserRepository, log *zap.Logger) NotificationService {
	return &notificationService{
		users: users,
		log:   log.With(zap.String("service", "notification")),
	}
}

// HandleBookingEvent skips undecodable payloads and unknown users so one bad
// message does not stall the consumer. Only store failures are returned.
func (s *notificationService) HandleBookingEvent(ctx context.Context, payload []byte) error {
	var event entity.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Warn("Skipping undecodable booking event", zap.Error(err))
		return nil
	}

	subject, ok := notificationSubject(event)
	if !ok {
		s.log.Warn("Skipping unknown booking event type", zap.String("type", string(event.Type)))
		return nil
	}

	user, err := s.users.FindByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", event.UserID, err)
	}
	if user == nil {
		s.log.Warn("Skipping notification for unknown user", zap.String("user_id", event.UserID.String()))
		return nil
	}

	s.log.Info("Booking notification sent",
		zap.String("to", user.Email),
		zap.String("subject", subject),
		zap.String("booking_reference", event.BookingReference),
		zap.Strings("seats", event.Seats),
		zap.Float64("total_amount", event.TotalAmount),
	)

	return nil
}

func notificationSubject(event entity.BookingEvent) (string, bool) {
	switch event.Type {
	case entity.EventBookingCreated:
		return fmt.Sprintf("Booking %s confirmed", event.BookingReference), true
	case entity.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.BookingReference), true
	default:
		return "", false
	}
}
