package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"car-rental/internal/data/entity"
	"car-rental/internal/usecase"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Car     *CarHandler
	Booking *BookingHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Car:     NewCarHandler(service.Car, service.Availability, log),
		Booking: NewBookingHandler(service.Booking, log),
		Admin:   NewAdminHandler(service.Admin, log),
	}
}

// actorFrom reads the caller placed in the context by AuthSession.
func actorFrom(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{UserID: userID, Role: entity.UserRole(role)}, true
}

// decodeJSON reports false after writing a 400 when the body is not valid JSON.
// An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	utils.ResponseBadRequest(w, "Invalid request body", nil)
	return false
}

// handleServiceError maps AppErrors to the response envelope. Only server
// errors are logged at error level.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr := apperror.As(err)

	switch {
	case appErr.HTTPStatus >= http.StatusInternalServerError:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	case appErr.Code == apperror.CodeConflict:
		log.Info(operation+" conflict", zap.String("reason", appErr.Message))
	default:
		log.Warn(operation+" failed",
			zap.String("code", appErr.Code),
			zap.String("reason", appErr.Message),
		)
	}

	utils.ResponseAppError(w, appErr)
}
