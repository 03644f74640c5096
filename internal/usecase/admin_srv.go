package usecase

import (
	"context"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/events"
	"car-rental/internal/report"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminService interface {
	// Users
	ListUsers(ctx context.Context, actor Actor, filter entity.UserFilter) ([]response.UserResponse, error)
	SetUserBlocked(ctx context.Context, actor Actor, userID string, req *request.UpdateUserStatusRequest) (*response.BlockUserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, userID string) error

	// Cars
	ListCars(ctx context.Context, actor Actor, filter entity.CarFilter) ([]response.CarResponse, error)
	ApproveCar(ctx context.Context, actor Actor, carID string, req *request.ApproveCarRequest) (*response.CarResponse, error)

	// Bookings
	ListBookings(ctx context.Context, actor Actor, filter entity.BookingFilter) ([]response.BookingResponse, error)
	ExportBookings(ctx context.Context, actor Actor) (*report.Export, error)

	Dashboard(ctx context.Context, actor Actor) (*response.AdminDashboardResponse, error)
}

type adminService struct {
	repo   *repository.Repository
	config *utils.Config
	bus    *events.EventBus
	now    func() time.Time
	log    *zap.Logger
}

func NewAdminService(repo *repository.Repository, config *utils.Config, log *zap.Logger, o *options) AdminService {
	return &adminService{
		repo:   repo,
		config: config,
		bus:    o.bus,
		now:    o.clock,
		log:    log.With(zap.String("service", "admin")),
	}
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

// ==================== USERS ====================

func (s *adminService) ListUsers(ctx context.Context, actor Actor, filter entity.UserFilter) ([]response.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	users, err := s.repo.User.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list users", zap.Error(err))
		return nil, storeError(err, "User", "")
	}
	return response.UsersToResponse(users), nil
}

// SetUserBlocked cancels the user's open bookings, frees their cars and
// revokes sessions in the same transaction as the block itself.
func (s *adminService) SetUserBlocked(ctx context.Context, actor Actor, userID string, req *request.UpdateUserStatusRequest) (*response.BlockUserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	id, err := parseID(userID, "userId")
	if err != nil {
		return nil, err
	}
	blocked := *req.IsBlocked

	var user *entity.User
	var cancelled []*entity.Booking
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		user, err = tx.User.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NotFound("User")
		}
		if user.Role == entity.RoleAdmin {
			return apperror.InvalidState("Admin accounts cannot be blocked")
		}

		user.IsBlocked = blocked
		user.UpdatedAt = s.now()
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if !blocked {
			return nil
		}

		cancelled, err = cancelUserBookings(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		return tx.Session.RevokeAllUserSessions(ctx, user.ID)
	})
	if err != nil {
		err = storeError(err, "User", "User was modified concurrently, please retry")
		if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to update user status", zap.Error(err), zap.String("user_id", userID))
		}
		return nil, err
	}

	for _, b := range cancelled {
		if err := s.bus.PublishJSON(ctx, events.EventBookingStatus, b.ID.String(), bookingPayload(b, "", actor.UserID)); err != nil {
			s.log.Warn("Failed to publish booking event", zap.Error(err))
		}
	}
	if err := s.bus.PublishJSON(ctx, events.EventUserBlockChanged, user.ID.String(), events.UserPayload{
		UserID:    user.ID,
		Blocked:   blocked,
		Cancelled: len(cancelled),
	}); err != nil {
		s.log.Warn("Failed to publish user event", zap.Error(err))
	}

	s.log.Info("User status updated",
		zap.String("user_id", user.ID.String()),
		zap.Bool("blocked", blocked),
		zap.Int("cancelled_bookings", len(cancelled)),
		zap.String("admin_id", actor.UserID.String()),
	)

	return &response.BlockUserResponse{
		User:              response.UserToResponse(user),
		CancelledBookings: len(cancelled),
	}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	id, err := parseID(userID, "userId")
	if err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NotFound("User")
		}
		if user.Role == entity.RoleAdmin {
			return apperror.InvalidState("Admin accounts cannot be deleted")
		}

		renting, err := tx.Booking.FindByUserAndStatuses(ctx, id, entity.BlockingStatuses)
		if err != nil {
			return err
		}
		if len(renting) > 0 {
			return apperror.InvalidState("User has confirmed or active bookings")
		}

		owned, err := tx.Booking.FindAll(ctx, entity.BookingFilter{OwnerID: &id})
		if err != nil {
			return err
		}
		for _, b := range owned {
			if b.Status.IsBlocking() {
				return apperror.InvalidState("User's cars have confirmed or active bookings")
			}
		}

		// Pending bookings go with the user; free their cars first.
		if _, err := cancelUserBookings(ctx, tx, id); err != nil {
			return err
		}
		return tx.User.Delete(ctx, id)
	})
	if err != nil {
		err = storeError(err, "User", "User was modified concurrently, please retry")
		if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", userID))
		}
		return err
	}

	s.log.Info("User deleted", zap.String("user_id", userID), zap.String("admin_id", actor.UserID.String()))
	return nil
}

// ==================== CARS ====================

func (s *adminService) ListCars(ctx context.Context, actor Actor, filter entity.CarFilter) ([]response.CarResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	cars, err := s.repo.Car.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list cars", zap.Error(err))
		return nil, storeError(err, "Car", "")
	}
	return response.CarsToResponse(cars), nil
}

func (s *adminService) ApproveCar(ctx context.Context, actor Actor, carID string, req *request.ApproveCarRequest) (*response.CarResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	id, err := parseID(carID, "carId")
	if err != nil {
		return nil, err
	}

	approved := *req.IsApproved
	var reason *string
	if !approved && req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
		trimmed := strings.TrimSpace(*req.Reason)
		reason = &trimmed
	}

	var car *entity.Car
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		car, err = tx.Car.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if car == nil {
			return apperror.NotFound("Car")
		}
		if err := tx.Car.SetApproval(ctx, id, approved, reason); err != nil {
			return err
		}
		car.IsApproved = approved
		car.RejectionReason = reason
		return nil
	})
	if err != nil {
		err = storeError(err, "Car", "Car was modified concurrently, please retry")
		if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to set car approval", zap.Error(err), zap.String("car_id", carID))
		}
		return nil, err
	}

	payload := events.CarPayload{CarID: car.ID, OwnerID: car.OwnerID, Approved: approved}
	if reason != nil {
		payload.Reason = *reason
	}
	if err := s.bus.PublishJSON(ctx, events.EventCarApproval, car.ID.String(), payload); err != nil {
		s.log.Warn("Failed to publish car event", zap.Error(err))
	}

	s.log.Info("Car approval updated",
		zap.String("car_id", carID),
		zap.Bool("approved", approved),
		zap.String("admin_id", actor.UserID.String()),
	)

	resp := response.CarToResponse(car)
	return &resp, nil
}

// ==================== BOOKINGS ====================

func (s *adminService) ListBookings(ctx context.Context, actor Actor, filter entity.BookingFilter) ([]response.BookingResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	bookings, cars, err := s.bookingsWithCars(ctx, filter)
	if err != nil {
		return nil, err
	}
	return response.BookingsToResponse(bookings, cars), nil
}

func (s *adminService) ExportBookings(ctx context.Context, actor Actor) (*report.Export, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	bookings, cars, err := s.bookingsWithCars(ctx, entity.BookingFilter{})
	if err != nil {
		return nil, err
	}

	export, err := report.BookingsWorkbook(bookings, cars, s.now())
	if err != nil {
		s.log.Error("Failed to render bookings export", zap.Error(err))
		return nil, apperror.Internal("Failed to export bookings", err)
	}

	if s.config != nil && s.config.App.ExportPath != "" {
		path, err := report.Save(s.config.App.ExportPath, export)
		if err != nil {
			s.log.Warn("Failed to store bookings export", zap.Error(err))
		} else {
			s.log.Info("Bookings export stored", zap.String("path", path))
		}
	}

	s.log.Info("Bookings exported", zap.Int("rows", len(bookings)), zap.String("admin_id", actor.UserID.String()))
	return export, nil
}

func (s *adminService) Dashboard(ctx context.Context, actor Actor) (*response.AdminDashboardResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	byRole, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		s.log.Error("Failed to count users", zap.Error(err))
		return nil, storeError(err, "User", "")
	}
	carStats, err := s.repo.Car.Stats(ctx, nil)
	if err != nil {
		s.log.Error("Failed to count cars", zap.Error(err))
		return nil, storeError(err, "Car", "")
	}
	bookingStats, err := s.repo.Booking.Stats(ctx, nil)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, storeError(err, "Booking", "")
	}

	users := response.UserCounts{
		Users:  byRole[entity.RoleUser],
		Owners: byRole[entity.RoleOwner],
		Admins: byRole[entity.RoleAdmin],
	}
	users.Total = users.Users + users.Owners + users.Admins

	return &response.AdminDashboardResponse{
		Users:    users,
		Cars:     *carStats,
		Bookings: *bookingStats,
	}, nil
}

func (s *adminService) bookingsWithCars(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, map[string]*entity.Car, error) {
	bookings, err := s.repo.Booking.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, nil, storeError(err, "Booking", "")
	}

	cars := make(map[string]*entity.Car)
	seen := make(map[uuid.UUID]bool)
	for _, b := range bookings {
		if seen[b.CarID] {
			continue
		}
		seen[b.CarID] = true

		car, err := s.repo.Car.FindByID(ctx, b.CarID)
		if err != nil {
			s.log.Error("Failed to load car", zap.Error(err), zap.String("car_id", b.CarID.String()))
			return nil, nil, storeError(err, "Car", "")
		}
		if car != nil {
			cars[b.CarID.String()] = car
		}
	}
	return bookings, cars, nil
}
