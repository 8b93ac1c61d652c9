package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrInsufficientSeats is returned when the conditional seat decrement
	// matched no row.
	ErrInsufficientSeats = errors.New("insufficient seats")
	// ErrAlreadyCancelled is returned when the booking was cancelled by an
	// earlier request.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrDuplicateReference is returned on a booking_reference collision.
	ErrDuplicateReference = errors.New("duplicate booking reference")
	// ErrSeatsHeld matches any *SeatsHeldError.
	ErrSeatsHeld = errors.New("seats already held")
)

// SeatsHeldError lists the requested seats that an active booking on the
// same flight already holds.
type SeatsHeldError struct {
	Seats []string
}

func (e *SeatsHeldError) Error() string {
	return "seats already held: " + strings.Join(e.Seats, ", ")
}

func (e *SeatsHeldError) Is(target error) bool {
	return target == ErrSeatsHeld
}

// seatQuerier is satisfied by both the pool and an open transaction.
type seatQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type BookingRepository interface {
	// CreateWithSeatReservation decrements the flight's available seats and
	// inserts the booking in one transaction. The decrement locks the flight
	// row, so the held-seat check inside the transaction sees every booking
	// committed before it; a taken seat yields *SeatsHeldError.
	CreateWithSeatReservation(ctx context.Context, booking *entity.Booking) error
	// CancelWithSeatRelease marks the booking cancelled and returns its seats
	// to the flight in one transaction. restored is false when the flight no
	// longer exists.
	CancelWithSeatRelease(ctx context.Context, booking *entity.Booking) (restored bool, err error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindConfirmedSeatNumbers lists the distinct seats of confirmed bookings.
	FindConfirmedSeatNumbers(ctx context.Context, flightID uuid.UUID) ([]string, error)
	// FindHeldSeatNumbers returns which of seats belong to active bookings.
	FindHeldSeatNumbers(ctx context.Context, flightID uuid.UUID, seats []string) ([]string, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const (
	reserveSeatsQuery = `UPDATE flights SET available_seats = available_seats - $2, updated_at = $3 WHERE id = $1 AND available_seats >= $2`

	releaseSeatsQuery = `UPDATE flights SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = $3 WHERE id = $1`

	insertBookingQuery = `INSERT INTO bookings (id, booking_reference, user_id, flight_id, passengers, total_seats, total_amount, status, payment_status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	cancelBookingQuery = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2`

	heldSeatsQuery = `SELECT DISTINCT p->>'seat_number' AS seat FROM bookings b, jsonb_array_elements(b.passengers) AS p WHERE b.flight_id = $1 AND b.status <> $2 AND p->>'seat_number' = ANY($3) ORDER BY seat`

	bookingColumns = `id, booking_reference, user_id, flight_id, passengers, total_seats, total_amount, status, payment_status, created_at, updated_at`
)

func (r *bookingRepository) CreateWithSeatReservation(ctx context.Context, booking *entity.Booking) error {
	passengers, err := json.Marshal(booking.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, reserveSeatsQuery, booking.FlightID, booking.TotalSeats, booking.CreatedAt)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("flight_id", booking.FlightID.String()),
		)
		return fmt.Errorf("reserve seats on flight %s: %w", booking.FlightID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientSeats
	}

	held, err := r.querySeats(ctx, tx, "held", heldSeatsQuery,
		booking.FlightID, entity.BookingStatusCancelled, booking.SeatNumbers())
	if err != nil {
		return err
	}
	if len(held) > 0 {
		return &SeatsHeldError{Seats: held}
	}

	_, err = tx.Exec(ctx, insertBookingQuery,
		booking.ID,
		booking.BookingReference,
		booking.UserID,
		booking.FlightID,
		passengers,
		booking.TotalSeats,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateReference
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("booking_reference", booking.BookingReference),
		)
		return fmt.Errorf("insert booking %s: %w", booking.BookingReference, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking", zap.Error(err))
		return fmt.Errorf("commit booking %s: %w", booking.BookingReference, err)
	}

	return nil
}

func (r *bookingRepository) CancelWithSeatRelease(ctx context.Context, booking *entity.Booking) (bool, error) {
	now := time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return false, fmt.Errorf("begin cancel booking: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, cancelBookingQuery, booking.ID, entity.BookingStatusCancelled, now)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return false, fmt.Errorf("cancel booking %s: %w", booking.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, ErrAlreadyCancelled
	}

	tag, err = tx.Exec(ctx, releaseSeatsQuery, booking.FlightID, booking.TotalSeats, now)
	if err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("flight_id", booking.FlightID.String()),
		)
		return false, fmt.Errorf("release seats on flight %s: %w", booking.FlightID, err)
	}
	restored := tag.RowsAffected() > 0

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit cancellation", zap.Error(err))
		return false, fmt.Errorf("commit cancel booking %s: %w", booking.ID, err)
	}

	booking.Status = entity.BookingStatusCancelled
	booking.UpdatedAt = now

	return restored, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindConfirmedSeatNumbers(ctx context.Context, flightID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT p->>'seat_number' AS seat
		FROM bookings b, jsonb_array_elements(b.passengers) AS p
		WHERE b.flight_id = $1 AND b.status = $2
		ORDER BY seat
	`

	return r.querySeats(ctx, r.db, "confirmed", query, flightID, entity.BookingStatusConfirmed)
}

func (r *bookingRepository) FindHeldSeatNumbers(ctx context.Context, flightID uuid.UUID, seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}

	return r.querySeats(ctx, r.db, "held", heldSeatsQuery, flightID, entity.BookingStatusCancelled, seats)
}

func (r *bookingRepository) querySeats(ctx context.Context, q seatQuerier, kind, query string, flightID uuid.UUID, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, append([]any{flightID}, args...)...)
	if err != nil {
		r.log.Error("Failed to query seats",
			zap.Error(err),
			zap.String("kind", kind),
			zap.String("flight_id", flightID.String()),
		)
		return nil, fmt.Errorf("find %s seats for flight %s: %w", kind, flightID.String(), err)
	}
	defer rows.Close()

	seats := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}

	return seats, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var (
		booking    entity.Booking
		passengers []byte
	)

	err := row.Scan(
		&booking.ID,
		&booking.BookingReference,
		&booking.UserID,
		&booking.FlightID,
		&passengers,
		&booking.TotalSeats,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(passengers, &booking.Passengers); err != nil {
		return nil, fmt.Errorf("decode passengers of booking %s: %w", booking.ID, err)
	}

	return &booking, nil
}
