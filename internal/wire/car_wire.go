package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/entity"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCar(r chi.Router, carHandler *adaptor.CarHandler, auth middleware.Authenticator, log *zap.Logger) {
	r.Route("/cars", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", carHandler.ListCars)
		r.Get("/search", carHandler.SearchCars)
		for _, path := range []string{"/find-available", "/search-available"} {
			r.Get(path, carHandler.FindAvailable)
			r.Post(path, carHandler.FindAvailable)
		}
		r.Get("/check-availability", carHandler.CheckAvailability)
		r.Post("/check-availability", carHandler.CheckAvailability)

		// Unapproved cars are visible to their owner and admins only.
		r.With(middleware.OptionalAuth(auth, log)).Get("/{id}", carHandler.GetCar)

		// ==================== OWNER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthSession(auth, log))
			r.Use(middleware.RequireRole(log, entity.RoleOwner, entity.RoleAdmin))

			r.Get("/owner/my-cars", carHandler.GetOwnerCars)
			r.Patch("/{id}", carHandler.UpdateCar)
			r.Delete("/{id}", carHandler.DeleteCar)
		})
	})
}
