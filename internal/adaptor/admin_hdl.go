package adaptor

import (
	"net/http"
	"strconv"

	"car-rental/internal/data/entity"
	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "load admin dashboard")
		return
	}
	utils.ResponseSuccess(w, "Dashboard retrieved successfully", dashboard)
}

// ==================== USERS ====================

// ListUsers handles GET /api/admin/users?role=&isBlocked=&search=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	filter := entity.UserFilter{
		IsBlocked: utils.ParseBool(q.Get("isBlocked")),
		Search:    q.Get("search"),
	}
	if role := q.Get("role"); role != "" {
		ur := entity.UserRole(role)
		filter.Role = &ur
	}

	users, err := h.service.ListUsers(r.Context(), actor, filter)
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}
	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// SetUserStatus handles PATCH /api/admin/users/{id}/status
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateUserStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.SetUserBlocked(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update user status")
		return
	}

	msg := "User unblocked successfully"
	if resp.User.IsBlocked {
		msg = "User blocked successfully"
	}
	utils.ResponseSuccess(w, msg, resp)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}
	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

// ==================== CARS ====================

// ListCars handles GET /api/admin/cars?isApproved=&isAvailable=
func (h *AdminHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	filter := carFilterFromQuery(r)
	filter.IsApproved = utils.ParseBool(r.URL.Query().Get("isApproved"))
	filter.IsAvailable = utils.ParseBool(r.URL.Query().Get("isAvailable"))

	cars, err := h.service.ListCars(r.Context(), actor, filter)
	if err != nil {
		handleServiceError(w, h.log, err, "list cars")
		return
	}
	utils.ResponseSuccessAs(w, "Cars retrieved successfully", "cars", cars)
}

// ApproveCar handles PATCH /api/admin/cars/{id}/approve
func (h *AdminHandler) ApproveCar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ApproveCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.ApproveCar(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "approve car")
		return
	}

	msg := "Car rejected"
	if car.IsApproved {
		msg = "Car approved"
	}
	utils.ResponseSuccessAs(w, msg, "car", car)
}

// ==================== BOOKINGS ====================

// ListBookings handles GET /api/admin/bookings?status=&paymentStatus=
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	var filter entity.BookingFilter
	if status := q.Get("status"); status != "" {
		s := entity.BookingStatus(status)
		filter.Status = &s
	}
	if payment := q.Get("paymentStatus"); payment != "" {
		p := entity.PaymentStatus(payment)
		filter.PaymentStatus = &p
	}

	bookings, err := h.service.ListBookings(r.Context(), actor, filter)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}
	utils.ResponseSuccessAs(w, "Bookings retrieved successfully", "bookings", bookings)
}

// ExportBookings handles GET /api/admin/bookings/export
func (h *AdminHandler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	export, err := h.service.ExportBookings(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "export bookings")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.log.Warn("Failed to write export", zap.Error(err))
	}
}
