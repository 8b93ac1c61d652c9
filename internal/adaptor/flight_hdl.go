package adaptor

import (
	"encoding/json"
	"net/http"
	"strconv"

	"flight-booking/internal/dto/request"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service  usecase.FlightService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewFlightHandler(service usecase.FlightService, bookings usecase.BookingService, log *zap.Logger) *FlightHandler {
	return &FlightHandler{
		service:  service,
		bookings: bookings,
		log:      log.With(zap.String("handler", "flight")),
	}
}

// SearchFlights handles GET /api/flights
// ?origin=DEL&destination=BOM&date=2026-03-01&min_price=&max_price=&airline=&sort=price_asc&page=1&per_page=10
func (h *FlightHandler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, perPage := parsePagination(r)

	req := &request.SearchFlightRequest{
		Origin:      query.Get("origin"),
		Destination: query.Get("destination"),
		Date:        query.Get("date"),
		Airline:     query.Get("airline"),
		Sort:        query.Get("sort"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    page,
			PerPage: perPage,
		},
	}

	var err error
	if req.MinPrice, err = parseOptionalFloat(query.Get("min_price")); err != nil {
		utils.ResponseBadRequest(w, "min_price must be a number", nil)
		return
	}
	if req.MaxPrice, err = parseOptionalFloat(query.Get("max_price")); err != nil {
		utils.ResponseBadRequest(w, "max_price must be a number", nil)
		return
	}

	flights, err := h.service.SearchFlights(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search flights")
		return
	}

	utils.ResponseSuccess(w, "success", flights)
}

// GetFlightByID handles GET /api/flights/{id}
func (h *FlightHandler) GetFlightByID(w http.ResponseWriter, r *http.Request) {
	flight, err := h.service.GetFlightByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get flight")
		return
	}

	utils.ResponseSuccess(w, "success", flight)
}

// GetBookedSeats handles GET /api/flights/{id}/booked-seats
func (h *FlightHandler) GetBookedSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.bookings.GetBookedSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booked seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// CreateFlight handles POST /api/admin/flights (admin only)
func (h *FlightHandler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req request.CreateFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	flight, err := h.service.CreateFlight(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create flight")
		return
	}

	utils.ResponseCreated(w, "Flight created", flight)
}

func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
