package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/events"
	"car-rental/pkg/apperror"
	"car-rental/pkg/metrics"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgCarTaken = "Car is already booked for the selected dates"

type BookingService interface {
	// Renter
	CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)
	GetMyBookings(ctx context.Context, actor Actor) ([]response.BookingResponse, error)

	// Owner / admin
	UpdateStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error)
	GetOwnerBookings(ctx context.Context, actor Actor, status string) ([]response.BookingResponse, error)
	GetBookingByID(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)

	// Admin
	AdminUpdateBooking(ctx context.Context, actor Actor, bookingID string, req *request.AdminUpdateBookingRequest) (*response.BookingResponse, error)
	ForceCancelUserBookings(ctx context.Context, userID uuid.UUID) (int, error)

	// ExpirePendingBookings cancels pending bookings created before now-olderThan.
	ExpirePendingBookings(ctx context.Context, olderThan time.Duration) (int, error)
}

type bookingService struct {
	repo    *repository.Repository
	config  *utils.Config
	limiter BookingLimiter
	bus     *events.EventBus
	now     func() time.Time
	log     *zap.Logger
}

func NewBookingService(repo *repository.Repository, config *utils.Config, log *zap.Logger, o *options) BookingService {
	return &bookingService{
		repo:    repo,
		config:  config,
		limiter: o.limiter,
		bus:     o.bus,
		now:     o.clock,
		log:     log.With(zap.String("service", "booking")),
	}
}

// ==================== CREATE ====================

func (s *bookingService) CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	carID, err := parseID(req.CarID, "carId")
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if start.Before(now.Truncate(time.Second)) {
		return nil, apperror.ValidationFields("Start date cannot be in the past",
			map[string]string{"startDate": "must not be in the past"})
	}

	renter, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to load renter", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, storeError(err, "User", "")
	}
	if renter == nil {
		return nil, apperror.NotFound("User")
	}
	if renter.IsBlocked {
		return nil, apperror.Forbidden("Your account is blocked")
	}

	if err := s.checkRate(ctx, actor.UserID); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		car, err := tx.Car.FindByIDForUpdate(ctx, carID)
		if err != nil {
			return err
		}
		if car == nil {
			return apperror.NotFound("Car")
		}
		if car.IsOwnedBy(actor.UserID) {
			return apperror.Forbidden("You cannot book your own car")
		}
		if !car.IsApproved {
			return apperror.InvalidState("Car is not approved for booking")
		}
		// Held by another booking: reported as Conflict, like an overlap.
		if !car.IsAvailable {
			return apperror.Conflict("Car is not available")
		}

		free, err := rangeFree(ctx, tx.Booking, carID, start, end, nil)
		if err != nil {
			return err
		}
		if !free {
			return apperror.Conflict(msgCarTaken)
		}

		days := entity.RentalDays(start, end)
		booking = &entity.Booking{
			Base:            entity.NewBase(now),
			BookingCode:     utils.GenerateBookingCode(now),
			UserID:          actor.UserID,
			CarID:           car.ID,
			OwnerID:         car.OwnerID,
			StartDate:       start,
			EndDate:         end,
			TotalDays:       days,
			PricePerDay:     car.PricePerDay,
			TotalAmount:     float64(days) * car.PricePerDay,
			Status:          entity.BookingStatusPending,
			PaymentStatus:   entity.PaymentStatusPending,
			PaymentMethod:   valueOr(req.PaymentMethod, entity.DefaultPaymentMethod),
			PickupLocation:  valueOr(req.PickupLocation, car.Location),
			DropoffLocation: valueOr(req.DropoffLocation, car.Location),
			SpecialRequests: req.SpecialRequests,
		}

		if err := tx.Booking.Create(ctx, booking); err != nil {
			return err
		}
		return tx.Car.SetAvailability(ctx, car.ID, false)
	})
	if err != nil {
		err = storeError(err, "Car", msgCarTaken)
		if apperror.HasCode(err, apperror.CodeConflict) {
			metrics.BookingConflicts.Inc()
			s.log.Info("Booking rejected",
				zap.String("car_id", req.CarID),
				zap.String("user_id", actor.UserID.String()),
				zap.Error(err),
			)
		} else if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to create booking", zap.Error(err), zap.String("car_id", req.CarID))
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.publish(ctx, events.EventBookingCreated, booking, "", actor.UserID)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("user_id", actor.UserID.String()),
		zap.String("car_id", booking.CarID.String()),
		zap.Int("total_days", booking.TotalDays),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// checkRate fails open when the limiter backend is unreachable.
func (s *bookingService) checkRate(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil || s.config == nil || s.config.Booking.CreateLimit <= 0 {
		return nil
	}

	allowed, err := s.limiter.Allow(ctx, "booking:create:"+userID.String(),
		s.config.Booking.CreateLimit, s.config.Booking.CreateWindow)
	if err != nil {
		s.log.Warn("Booking limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return apperror.TooManyRequests("Too many booking attempts, try again later")
	}
	return nil
}

// ==================== LIFECYCLE ====================

// UpdateStatus reports NotFound, then Forbidden, before judging the requested status.
func (s *bookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	var booking *entity.Booking
	var previous entity.BookingStatus
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err = lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && booking.OwnerID != actor.UserID {
			return apperror.Forbidden("Only the car owner or an admin can update this booking")
		}
		if err := validate(req); err != nil {
			return err
		}

		target, err := entity.ParseBookingStatus(req.Status)
		if err != nil {
			return apperror.ValidationFields("Invalid booking status",
				map[string]string{"status": "Must be one of: pending, confirmed, active, completed, cancelled"})
		}

		previous = booking.Status
		return transition(ctx, tx, booking, target)
	})
	if err != nil {
		return nil, s.lifecycleError(err, "Failed to update booking status", bookingID)
	}

	s.afterTransition(ctx, actor, booking, previous)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	var booking *entity.Booking
	var previous entity.BookingStatus
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err = lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking.UserID != actor.UserID {
			return apperror.Forbidden("Only the renter can cancel this booking")
		}
		if !booking.Status.CancellableByRenter() {
			return apperror.InvalidState(fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
		}

		previous = booking.Status
		return transition(ctx, tx, booking, entity.BookingStatusCancelled)
	})
	if err != nil {
		return nil, s.lifecycleError(err, "Failed to cancel booking", bookingID)
	}

	s.afterTransition(ctx, actor, booking, previous)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	var booking *entity.Booking
	var changed bool
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err = lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && booking.OwnerID != actor.UserID {
			return apperror.Forbidden("Only the car owner or an admin can update payment")
		}
		if err := validate(req); err != nil {
			return err
		}

		changed, err = setPayment(ctx, tx, booking, req.PaymentStatus)
		return err
	})
	if err != nil {
		return nil, s.lifecycleError(err, "Failed to update payment status", bookingID)
	}

	if changed {
		s.publish(ctx, events.EventBookingPayment, booking, "", actor.UserID)
		s.log.Info("Payment status updated",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_status", string(booking.PaymentStatus)),
		)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) AdminUpdateBooking(ctx context.Context, actor Actor, bookingID string, req *request.AdminUpdateBookingRequest) (*response.BookingResponse, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Admin access required")
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, apperror.Validation("Nothing to update")
	}
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	var booking *entity.Booking
	var previous entity.BookingStatus
	var paymentChanged bool
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err = lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		previous = booking.Status

		if req.Status != nil && entity.BookingStatus(*req.Status) != booking.Status {
			if err := transition(ctx, tx, booking, entity.BookingStatus(*req.Status)); err != nil {
				return err
			}
		}
		if req.PaymentStatus != nil {
			paymentChanged, err = setPayment(ctx, tx, booking, *req.PaymentStatus)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.lifecycleError(err, "Failed to update booking", bookingID)
	}

	s.afterTransition(ctx, actor, booking, previous)
	if paymentChanged {
		s.publish(ctx, events.EventBookingPayment, booking, "", actor.UserID)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ForceCancelUserBookings(ctx context.Context, userID uuid.UUID) (int, error) {
	var cancelled []*entity.Booking
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		cancelled, err = cancelUserBookings(ctx, tx, userID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to cancel user bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, storeError(err, "Booking", "Bookings changed concurrently, please retry")
	}

	for _, b := range cancelled {
		s.publish(ctx, events.EventBookingStatus, b, "", uuid.Nil)
	}
	return len(cancelled), nil
}

func (s *bookingService) ExpirePendingBookings(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	stale, err := s.repo.Booking.FindStalePending(ctx, cutoff)
	if err != nil {
		s.log.Error("Failed to find stale pending bookings", zap.Error(err))
		return 0, storeError(err, "Booking", "")
	}

	expired := 0
	for _, candidate := range stale {
		var booking *entity.Booking
		err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			var err error
			booking, err = lockBooking(ctx, tx, candidate.ID)
			if err != nil {
				return err
			}
			// Confirmed or cancelled since the scan.
			if booking.Status != entity.BookingStatusPending {
				booking = nil
				return nil
			}
			return transition(ctx, tx, booking, entity.BookingStatusCancelled)
		})
		if err != nil {
			s.log.Warn("Failed to expire pending booking",
				zap.String("booking_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if booking == nil {
			continue
		}

		expired++
		metrics.PendingExpired.Inc()
		metrics.BookingTransitions.WithLabelValues(string(entity.BookingStatusPending), string(entity.BookingStatusCancelled)).Inc()
		s.publish(ctx, events.EventBookingStatus, booking, string(entity.BookingStatusPending), uuid.Nil)
	}

	if expired > 0 {
		s.log.Info("Expired pending bookings", zap.Int("count", expired), zap.Time("cutoff", cutoff))
	}
	return expired, nil
}

// ==================== READS ====================

func (s *bookingService) GetMyBookings(ctx context.Context, actor Actor) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx, entity.BookingFilter{UserID: &actor.UserID})
	if err != nil {
		s.log.Error("Failed to list user bookings", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, storeError(err, "Booking", "")
	}
	return s.withCars(ctx, bookings)
}

func (s *bookingService) GetOwnerBookings(ctx context.Context, actor Actor, status string) ([]response.BookingResponse, error) {
	if !actor.IsOwner() {
		return nil, apperror.Forbidden("Owner access required")
	}

	filter := entity.BookingFilter{OwnerID: &actor.UserID}
	if status = strings.TrimSpace(status); status != "" {
		parsed, err := entity.ParseBookingStatus(status)
		if err != nil {
			return nil, apperror.Validation("Invalid booking status")
		}
		filter.Status = &parsed
	}

	bookings, err := s.repo.Booking.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list owner bookings", zap.Error(err), zap.String("owner_id", actor.UserID.String()))
		return nil, storeError(err, "Booking", "")
	}
	return s.withCars(ctx, bookings)
}

func (s *bookingService) GetBookingByID(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, storeError(err, "Booking", "")
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}
	if !actor.IsAdmin() && booking.UserID != actor.UserID && booking.OwnerID != actor.UserID {
		return nil, apperror.Forbidden("You do not have access to this booking")
	}

	out, err := s.withCars(ctx, []*entity.Booking{booking})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) withCars(ctx context.Context, bookings []*entity.Booking) ([]response.BookingResponse, error) {
	cars := make(map[string]*entity.Car)
	for _, b := range bookings {
		key := b.CarID.String()
		if _, seen := cars[key]; seen {
			continue
		}
		car, err := s.repo.Car.FindByID(ctx, b.CarID)
		if err != nil {
			s.log.Error("Failed to load booking car", zap.Error(err), zap.String("car_id", key))
			return nil, storeError(err, "Car", "")
		}
		if car != nil {
			cars[key] = car
		}
	}
	return response.BookingsToResponse(bookings, cars), nil
}

func (s *bookingService) lifecycleError(err error, msg, bookingID string) error {
	err = storeError(err, "Booking", "Booking was modified concurrently, please retry")
	appErr := apperror.As(err)
	switch {
	case appErr.HTTPStatus >= 500:
		s.log.Error(msg, zap.Error(err), zap.String("booking_id", bookingID))
	case appErr.Code == apperror.CodeConflict:
		metrics.BookingConflicts.Inc()
		s.log.Info(msg, zap.Error(err), zap.String("booking_id", bookingID))
	default:
		s.log.Debug(msg, zap.Error(err), zap.String("booking_id", bookingID))
	}
	return err
}

func (s *bookingService) afterTransition(ctx context.Context, actor Actor, booking *entity.Booking, previous entity.BookingStatus) {
	if booking.Status == previous {
		return
	}
	metrics.BookingTransitions.WithLabelValues(string(previous), string(booking.Status)).Inc()
	s.publish(ctx, events.EventBookingStatus, booking, string(previous), actor.UserID)

	s.log.Info("Booking status changed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(booking.Status)),
		zap.String("actor_id", actor.UserID.String()),
	)
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *entity.Booking, previous string, actorID uuid.UUID) {
	if err := s.bus.PublishJSON(ctx, eventType, b.ID.String(), bookingPayload(b, previous, actorID)); err != nil {
		s.log.Warn("Failed to publish booking event", zap.Error(err), zap.String("type", eventType))
	}
}

func bookingPayload(b *entity.Booking, previous string, actorID uuid.UUID) events.BookingPayload {
	return events.BookingPayload{
		BookingID:     b.ID,
		BookingCode:   b.BookingCode,
		CarID:         b.CarID,
		UserID:        b.UserID,
		OwnerID:       b.OwnerID,
		Status:        string(b.Status),
		PreviousState: previous,
		PaymentStatus: string(b.PaymentStatus),
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		TotalAmount:   b.TotalAmount,
		ChangedBy:     actorID,
	}
}

func valueOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

// ==================== TRANSACTIONAL STEPS ====================
// These run against transaction-bound repositories only.

func lockBooking(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*entity.Booking, error) {
	booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}
	return booking, nil
}

// transition moves booking to target, keeping the car flag consistent. The
// car row is locked first so status changes of one car serialize with
// booking creation.
func transition(ctx context.Context, tx *repository.Repository, booking *entity.Booking, target entity.BookingStatus) error {
	if !booking.Status.CanTransitionTo(target) {
		return apperror.InvalidState(fmt.Sprintf("Cannot change booking status from %s to %s", booking.Status, target))
	}

	car, err := tx.Car.FindByIDForUpdate(ctx, booking.CarID)
	if err != nil {
		return err
	}

	if target.IsBlocking() {
		if car == nil {
			return apperror.NotFound("Car")
		}
		free, err := rangeFree(ctx, tx.Booking, booking.CarID, booking.StartDate, booking.EndDate, &booking.ID)
		if err != nil {
			return err
		}
		if !free {
			return apperror.Conflict(msgCarTaken)
		}
	}

	if err := tx.Booking.UpdateStatus(ctx, booking.ID, target); err != nil {
		return err
	}
	booking.Status = target

	switch {
	case car == nil:
		return nil
	case target.IsBlocking():
		return tx.Car.SetAvailability(ctx, car.ID, false)
	case target.ReleasesCar():
		return releaseCar(ctx, tx, car.ID, &booking.ID)
	}
	return nil
}

// releaseCar marks the car available unless another booking still holds it.
func releaseCar(ctx context.Context, tx *repository.Repository, carID uuid.UUID, excludeID *uuid.UUID) error {
	held, err := tx.Booking.ExistsForCar(ctx, carID, entity.HoldingStatuses, excludeID)
	if err != nil {
		return err
	}
	if held {
		return nil
	}
	return tx.Car.SetAvailability(ctx, carID, true)
}

func setPayment(ctx context.Context, tx *repository.Repository, booking *entity.Booking, value string) (bool, error) {
	status, err := entity.ParsePaymentStatus(value)
	if err != nil {
		return false, apperror.ValidationFields("Invalid payment status",
			map[string]string{"paymentStatus": "Must be one of: pending, paid"})
	}
	if booking.PaymentStatus == status {
		return false, nil
	}
	if err := tx.Booking.UpdatePaymentStatus(ctx, booking.ID, status); err != nil {
		return false, err
	}
	booking.PaymentStatus = status
	return true, nil
}

// cancelUserBookings cancels every holding booking of the user, then releases
// each affected car once.
func cancelUserBookings(ctx context.Context, tx *repository.Repository, userID uuid.UUID) ([]*entity.Booking, error) {
	bookings, err := tx.Booking.FindByUserAndStatuses(ctx, userID, entity.HoldingStatuses)
	if err != nil {
		return nil, err
	}

	cars := make(map[uuid.UUID]struct{})
	for _, b := range bookings {
		if err := tx.Booking.UpdateStatus(ctx, b.ID, entity.BookingStatusCancelled); err != nil {
			return nil, err
		}
		b.Status = entity.BookingStatusCancelled
		cars[b.CarID] = struct{}{}
	}

	for carID := range cars {
		car, err := tx.Car.FindByIDForUpdate(ctx, carID)
		if err != nil {
			return nil, err
		}
		if car == nil {
			continue
		}
		if err := releaseCar(ctx, tx, carID, nil); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}
