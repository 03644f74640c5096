package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/entity"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, auth middleware.Authenticator, log *zap.Logger) {
	r.Route("/booking", func(r chi.Router) {
		r.Use(middleware.AuthSession(auth, log))

		// ==================== RENTER ROUTES ====================
		r.Post("/create", bookingHandler.CreateBooking)
		r.Get("/my-bookings", bookingHandler.GetMyBookings)
		r.Delete("/{id}/cancel", bookingHandler.CancelBooking)

		// Renter, car owner or admin; checked per booking.
		r.Get("/{id}", bookingHandler.GetBooking)

		// ==================== OWNER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleOwner, entity.RoleAdmin))

			r.Get("/owner-bookings", bookingHandler.GetOwnerBookings)
			r.Patch("/{id}/status", bookingHandler.UpdateStatus)
			r.Patch("/{id}/payment", bookingHandler.UpdatePaymentStatus)
		})
	})
}
