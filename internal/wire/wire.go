package wire

import (
	"context"
	"net/http"
	"time"

	"flight-booking/internal/adaptor"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/middleware"
	"flight-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is served by GET /health.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// App holds the router and the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes.
func Wiring(repo *repository.Repository, deps usecase.Deps, config *utils.Config, logger *zap.Logger, checks ...HealthCheck) *App {
	service := usecase.NewService(repo, deps, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, checks, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	checks []HealthCheck,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireFlight(r, handler.Flight, repo, logger)
	wireBooking(r, handler.Booking, repo, logger)

	r.Get("/health", healthHandler(checks, logger))

	return r
}

func healthHandler(checks []HealthCheck, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
				status[check.Name] = "down"
				healthy = false
				continue
			}
			status[check.Name] = "up"
		}

		if !healthy {
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Unhealthy", status, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", status)
	}
}
