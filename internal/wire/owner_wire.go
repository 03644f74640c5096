package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/entity"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOwner(r chi.Router, handler *adaptor.Handler, auth middleware.Authenticator, log *zap.Logger) {
	r.Route("/owner", func(r chi.Router) {
		r.Use(middleware.AuthSession(auth, log))

		// Any signed-in user may upgrade; the service rejects non-user roles.
		r.Post("/change-role", handler.User.BecomeOwner)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleOwner, entity.RoleAdmin))

			r.Post("/add-car", handler.Car.AddCar)
			r.Get("/dashboard", handler.Car.OwnerDashboard)
		})
	})
}
