package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"flight-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func bookingEventPayload(t *testing.T, eventType entity.BookingEventType, userID uuid.UUID) []byte {
	t.Helper()

	booking := &entity.Booking{
		BaseNoDelete:     entity.BaseNoDelete{ID: uuid.New()},
		BookingReference: "FLT-20260302-060000-ABCDEF",
		UserID:           userID,
		FlightID:         uuid.New(),
		Passengers:       []entity.Passenger{{FirstName: "Asha", SeatNumber: "1A"}},
		TotalSeats:       1,
		TotalAmount:      4500,
		Status:           entity.BookingStatusConfirmed,
	}
	payload, err := json.Marshal(entity.NewBookingEvent(eventType, booking, time.Now()))
	require.NoError(t, err)
	return payload
}

func TestHandleBookingEvent(t *testing.T) {
	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "asha", Email: "asha@example.com"}

	tests := []struct {
		name        string
		payload     func(t *testing.T) []byte
		wantSubject string
	}{
		{
			name:        "created",
			payload:     func(t *testing.T) []byte { return bookingEventPayload(t, entity.EventBookingCreated, user.ID) },
			wantSubject: "Booking FLT-20260302-060000-ABCDEF confirmed",
		},
		{
			name:        "cancelled",
			payload:     func(t *testing.T) []byte { return bookingEventPayload(t, entity.EventBookingCancelled, user.ID) },
			wantSubject: "Booking FLT-20260302-060000-ABCDEF cancelled",
		},
		{
			name:    "unknown type",
			payload: func(t *testing.T) []byte { return bookingEventPayload(t, "booking.rescheduled", user.ID) },
		},
		{
			name:    "unknown user",
			payload: func(t *testing.T) []byte { return bookingEventPayload(t, entity.EventBookingCreated, uuid.New()) },
		},
		{
			name:    "not json",
			payload: func(t *testing.T) []byte { return []byte("{oops") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			svc := NewNotificationService(newFakeUserRepo(user), zap.New(core))

			err := svc.HandleBookingEvent(context.Background(), tt.payload(t))

			require.NoError(t, err)
			sent := logs.FilterMessage("Booking notification sent").All()
			if tt.wantSubject == "" {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			fields := sent[0].ContextMap()
			assert.Equal(t, "asha@example.com", fields["to"])
			assert.Equal(t, tt.wantSubject, fields["subject"])
		})
	}
}
