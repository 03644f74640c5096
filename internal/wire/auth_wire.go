package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(r chi.Router, handler *adaptor.Handler, auth middleware.Authenticator, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/auth/register", handler.Auth.Register)
	r.Post("/auth/login", handler.Auth.Login)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(auth, log))

		r.Post("/auth/logout", handler.Auth.Logout)
		r.Get("/user/profile", handler.User.GetProfile)
	})
}
