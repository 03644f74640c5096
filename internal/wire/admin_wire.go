package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/entity"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(r chi.Router, handler *adaptor.Handler, auth middleware.Authenticator, log *zap.Logger) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AuthSession(auth, log))
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		r.Get("/dashboard", handler.Admin.Dashboard)

		r.Get("/users", handler.Admin.ListUsers)
		r.Patch("/users/{id}/status", handler.Admin.SetUserStatus)
		r.Delete("/users/{id}", handler.Admin.DeleteUser)

		r.Get("/cars", handler.Admin.ListCars)
		r.Patch("/cars/{id}/approve", handler.Admin.ApproveCar)

		r.Get("/bookings", handler.Admin.ListBookings)
		r.Get("/bookings/export", handler.Admin.ExportBookings)
		r.Patch("/bookings/{id}", handler.Booking.AdminUpdateBooking)
	})
}
