package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type FlightSort string

const (
	SortPriceAsc      FlightSort = "price_asc"
	SortPriceDesc     FlightSort = "price_desc"
	SortDepartureAsc  FlightSort = "departure_asc"
	SortDepartureDesc FlightSort = "departure_desc"
	SortDurationAsc   FlightSort = "duration_asc"
)

var flightOrderBy = map[FlightSort]string{
	SortPriceAsc:      "price ASC, departure_time ASC",
	SortPriceDesc:     "price DESC, departure_time ASC",
	SortDepartureAsc:  "departure_time ASC",
	SortDepartureDesc: "departure_time DESC",
	SortDurationAsc:   "duration_minutes ASC, price ASC",
}

// ValidFlightSort reports whether s is a known sort key.
func ValidFlightSort(s FlightSort) bool {
	_, ok := flightOrderBy[s]
	return ok
}

// FlightFilter holds the optional search criteria. Zero values are ignored.
// Origin and Destination are expected upper-case.
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	Airline     string
	Sort        FlightSort
	Limit       int
	Offset      int
}

type FlightRepository interface {
	Create(ctx context.Context, flight *entity.Flight) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Flight, error)
	Search(ctx context.Context, filter FlightFilter) ([]*entity.Flight, error)
	CountSearch(ctx context.Context, filter FlightFilter) (int64, error)
}

type flightRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewFlightRepository(db database.PgxIface, log *zap.Logger) FlightRepository {
	return &flightRepository{
		db:  db,
		log: log.With(zap.String("repository", "flight")),
	}
}

const flightColumns = `id, flight_number, airline, origin, destination, departure_time, arrival_time,
		       duration_minutes, operating_days, price, total_seats, available_seats,
		       created_at, updated_at`

func (r *flightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	query := `
		INSERT INTO flights (id, flight_number, airline, origin, destination, departure_time,
		                     arrival_time, duration_minutes, operating_days, price,
		                     total_seats, available_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		flight.ID,
		flight.FlightNumber,
		flight.Airline,
		flight.Origin,
		flight.Destination,
		flight.DepartureTime,
		flight.ArrivalTime,
		flight.DurationMinutes,
		flight.OperatingDays,
		flight.Price,
		flight.TotalSeats,
		flight.AvailableSeats,
		flight.CreatedAt,
		flight.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create flight",
			zap.Error(err),
			zap.String("flight_number", flight.FlightNumber),
		)
		return fmt.Errorf("create flight %s: %w", flight.FlightNumber, err)
	}

	return nil
}

func (r *flightRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`

	flight, err := scanFlight(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find flight by ID",
			zap.Error(err),
			zap.String("flight_id", id.String()),
		)
		return nil, fmt.Errorf("find flight by ID %s: %w", id.String(), err)
	}

	return flight, nil
}

func (r *flightRepository) Search(ctx context.Context, filter FlightFilter) ([]*entity.Flight, error) {
	where, args := buildFlightWhere(filter)

	orderBy, ok := flightOrderBy[filter.Sort]
	if !ok {
		orderBy = flightOrderBy[SortPriceAsc]
	}

	var query strings.Builder
	query.WriteString(`SELECT ` + flightColumns + ` FROM flights`)
	query.WriteString(where)
	query.WriteString(" ORDER BY " + orderBy + ", id ASC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		r.log.Error("Failed to search flights", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("search flights: %w", err)
	}
	defer rows.Close()

	var flights []*entity.Flight
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			r.log.Error("Failed to scan flight row", zap.Error(err))
			return nil, fmt.Errorf("scan flight row: %w", err)
		}
		flights = append(flights, flight)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate flight rows: %w", err)
	}

	return flights, nil
}

func (r *flightRepository) CountSearch(ctx context.Context, filter FlightFilter) (int64, error) {
	where, args := buildFlightWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flights`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count flights", zap.Error(err))
		return 0, fmt.Errorf("count flights: %w", err)
	}

	return count, nil
}

// buildFlightWhere always restricts to flights with seats left.
func buildFlightWhere(filter FlightFilter) (string, []any) {
	var (
		where strings.Builder
		args  []any
	)

	where.WriteString(" WHERE available_seats > 0")

	add := func(clause string, value any) {
		args = append(args, value)
		where.WriteString(" AND " + fmt.Sprintf(clause, len(args)))
	}

	if filter.Origin != "" {
		add("origin = $%d", filter.Origin)
	}
	if filter.Destination != "" {
		add("destination = $%d", filter.Destination)
	}
	if filter.Date != nil {
		d := filter.Date.UTC()
		dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		add("$%d = ANY(operating_days)", int(dayStart.Weekday()))
		add("departure_time >= $%d", dayStart)
		add("departure_time < $%d", dayStart.AddDate(0, 0, 1))
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.Airline != "" {
		add("airline ILIKE $%d", "%"+escapeLike(filter.Airline)+"%")
	}

	return where.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanFlight(row pgx.Row) (*entity.Flight, error) {
	var flight entity.Flight
	err := row.Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Airline,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.ArrivalTime,
		&flight.DurationMinutes,
		&flight.OperatingDays,
		&flight.Price,
		&flight.TotalSeats,
		&flight.AvailableSeats,
		&flight.CreatedAt,
		&flight.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}
