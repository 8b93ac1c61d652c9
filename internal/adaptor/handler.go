package adaptor

import (
	"net/http"

	"flight-booking/internal/usecase"
	"flight-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Flight  *FlightHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Flight:  NewFlightHandler(service.Flight, service.Booking, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// handleServiceError maps the error kind to a response. Internal details are
// logged, never returned.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	msg := utils.MessageOf(err)

	switch utils.KindOf(err) {
	case utils.KindNotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case utils.KindValidation:
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, msg, nil)

	case utils.KindCapacity:
		log.Warn(operation+" failed - insufficient seats", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case utils.KindConflict:
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case utils.KindForbidden:
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case utils.KindUnauthorized:
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func parsePagination(r *http.Request) (page, perPage int) {
	query := r.URL.Query()
	return utils.ParseInt(query.Get("page"), utils.DefaultPage),
		utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage)
}
