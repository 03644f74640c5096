package wire

import (
	"net/http"

	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/internal/usecase"
	"car-rental/pkg/metrics"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router plus the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, opts ...usecase.Option) *App {
	service := usecase.NewService(repo, config, logger, opts...)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, service, config, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS)
	if config.App.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	if config.RateLimit.RPS > 0 {
		r.Use(middleware.NewRateLimiter(config.RateLimit, logger).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		wireAuth(r, handler, service.Auth, logger)
		wireCar(r, handler.Car, service.Auth, logger)
		wireOwner(r, handler, service.Auth, logger)
		wireBooking(r, handler.Booking, service.Auth, logger)
		wireAdmin(r, handler, service.Auth, logger)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if config.App.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}
