package usecase

import (
	"context"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/apperror"

	"go.uber.org/zap"
)

type CarService interface {
	// Public
	ListCars(ctx context.Context, filter entity.CarFilter) ([]response.CarResponse, error)
	SearchCars(ctx context.Context, query string) ([]response.CarResponse, error)
	// GetCar accepts a nil actor for anonymous callers.
	GetCar(ctx context.Context, actor *Actor, carID string) (*response.CarResponse, error)

	// Owner
	AddCar(ctx context.Context, actor Actor, req *request.CreateCarRequest) (*response.CarResponse, error)
	UpdateCar(ctx context.Context, actor Actor, carID string, req *request.UpdateCarRequest) (*response.CarResponse, error)
	DeleteCar(ctx context.Context, actor Actor, carID string) error
	GetOwnerCars(ctx context.Context, actor Actor) ([]response.CarResponse, error)
	OwnerDashboard(ctx context.Context, actor Actor) (*response.OwnerDashboardResponse, error)
}

type carService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewCarService(repo *repository.Repository, log *zap.Logger, o *options) CarService {
	return &carService{
		repo: repo,
		now:  o.clock,
		log:  log.With(zap.String("service", "car")),
	}
}

// ==================== PUBLIC ====================

func (s *carService) ListCars(ctx context.Context, filter entity.CarFilter) ([]response.CarResponse, error) {
	approved, available := true, true
	filter.IsApproved = &approved
	filter.IsAvailable = &available
	filter.OwnerID = nil

	cars, err := s.repo.Car.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list cars", zap.Error(err))
		return nil, storeError(err, "Car", "")
	}
	return response.CarsToResponse(cars), nil
}

func (s *carService) SearchCars(ctx context.Context, query string) ([]response.CarResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFields("Search query is required", map[string]string{"q": "This field is required"})
	}

	approved := true
	cars, err := s.repo.Car.FindAll(ctx, entity.CarFilter{Query: query, IsApproved: &approved})
	if err != nil {
		s.log.Error("Failed to search cars", zap.Error(err), zap.String("query", query))
		return nil, storeError(err, "Car", "")
	}
	return response.CarsToResponse(cars), nil
}

func (s *carService) GetCar(ctx context.Context, actor *Actor, carID string) (*response.CarResponse, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	if !car.IsApproved {
		if actor == nil || !(actor.IsAdmin() || car.IsOwnedBy(actor.UserID)) {
			return nil, apperror.Forbidden("Car is not approved yet")
		}
	}

	resp := response.CarToResponse(car)
	return &resp, nil
}

// ==================== OWNER ====================

func (s *carService) AddCar(ctx context.Context, actor Actor, req *request.CreateCarRequest) (*response.CarResponse, error) {
	if !actor.IsOwner() {
		return nil, apperror.Forbidden("Only owners can list cars")
	}
	if err := validate(req); err != nil {
		s.log.Warn("Add car validation failed", zap.Error(err))
		return nil, err
	}

	car := &entity.Car{
		Base:            entity.NewBase(s.now()),
		OwnerID:         actor.UserID,
		Brand:           strings.TrimSpace(req.Brand),
		Model:           strings.TrimSpace(req.Model),
		Year:            req.Year,
		Category:        strings.TrimSpace(req.Category),
		FuelType:        req.FuelType,
		Transmission:    req.Transmission,
		SeatingCapacity: req.SeatingCapacity,
		Location:        strings.TrimSpace(req.Location),
		PricePerDay:     req.PricePerDay,
		Description:     req.Description,
		Features:        req.Features,
		Image:           req.Image,
		IsAvailable:     true,
		IsApproved:      false,
	}

	if err := s.repo.Car.Create(ctx, car); err != nil {
		s.log.Error("Failed to create car", zap.Error(err), zap.String("owner_id", actor.UserID.String()))
		return nil, storeError(err, "Car", "Car already exists")
	}

	s.log.Info("Car listed",
		zap.String("car_id", car.ID.String()),
		zap.String("owner_id", actor.UserID.String()),
		zap.String("model", car.Brand+" "+car.Model),
	)

	resp := response.CarToResponse(car)
	return &resp, nil
}

// UpdateCar never touches approval or the snapshots of existing bookings.
func (s *carService) UpdateCar(ctx context.Context, actor Actor, carID string, req *request.UpdateCarRequest) (*response.CarResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	id, err := parseID(carID, "carId")
	if err != nil {
		return nil, err
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
		if !actor.IsAdmin() && !car.IsOwnedBy(actor.UserID) {
			return apperror.Forbidden("You can only edit your own cars")
		}

		if req.IsAvailable != nil && *req.IsAvailable && !car.IsAvailable {
			held, err := tx.Booking.ExistsForCar(ctx, car.ID, entity.HoldingStatuses, nil)
			if err != nil {
				return err
			}
			if held {
				return apperror.InvalidState("Car has open bookings and cannot be marked available")
			}
		}

		applyCarUpdate(car, req)
		car.UpdatedAt = s.now()
		return tx.Car.Update(ctx, car)
	})
	if err != nil {
		err = storeError(err, "Car", "Car was modified concurrently, please retry")
		if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to update car", zap.Error(err), zap.String("car_id", carID))
		}
		return nil, err
	}

	s.log.Info("Car updated", zap.String("car_id", carID), zap.String("actor_id", actor.UserID.String()))

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) DeleteCar(ctx context.Context, actor Actor, carID string) error {
	id, err := parseID(carID, "carId")
	if err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		car, err := tx.Car.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if car == nil {
			return apperror.NotFound("Car")
		}
		if !actor.IsAdmin() && !car.IsOwnedBy(actor.UserID) {
			return apperror.Forbidden("You can only delete your own cars")
		}

		busy, err := tx.Booking.ExistsForCar(ctx, id, entity.BlockingStatuses, nil)
		if err != nil {
			return err
		}
		if busy {
			return apperror.InvalidState("Car has confirmed or active bookings")
		}
		return tx.Car.Delete(ctx, id)
	})
	if err != nil {
		err = storeError(err, "Car", "Car was modified concurrently, please retry")
		if apperror.As(err).HTTPStatus >= 500 {
			s.log.Error("Failed to delete car", zap.Error(err), zap.String("car_id", carID))
		}
		return err
	}

	s.log.Info("Car deleted", zap.String("car_id", carID), zap.String("actor_id", actor.UserID.String()))
	return nil
}

func (s *carService) GetOwnerCars(ctx context.Context, actor Actor) ([]response.CarResponse, error) {
	if !actor.IsOwner() {
		return nil, apperror.Forbidden("Owner access required")
	}

	cars, err := s.repo.Car.FindAll(ctx, entity.CarFilter{OwnerID: &actor.UserID})
	if err != nil {
		s.log.Error("Failed to list owner cars", zap.Error(err), zap.String("owner_id", actor.UserID.String()))
		return nil, storeError(err, "Car", "")
	}
	return response.CarsToResponse(cars), nil
}

func (s *carService) OwnerDashboard(ctx context.Context, actor Actor) (*response.OwnerDashboardResponse, error) {
	if !actor.IsOwner() {
		return nil, apperror.Forbidden("Owner access required")
	}

	carStats, err := s.repo.Car.Stats(ctx, &actor.UserID)
	if err != nil {
		s.log.Error("Failed to count owner cars", zap.Error(err))
		return nil, storeError(err, "Car", "")
	}
	bookingStats, err := s.repo.Booking.Stats(ctx, &actor.UserID)
	if err != nil {
		s.log.Error("Failed to count owner bookings", zap.Error(err))
		return nil, storeError(err, "Booking", "")
	}
	recent, err := s.repo.Booking.FindAll(ctx, entity.BookingFilter{OwnerID: &actor.UserID})
	if err != nil {
		s.log.Error("Failed to list owner bookings", zap.Error(err))
		return nil, storeError(err, "Booking", "")
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &response.OwnerDashboardResponse{
		Cars:           *carStats,
		Bookings:       *bookingStats,
		RecentBookings: response.BookingsToResponse(recent, nil),
	}, nil
}

// ==================== HELPER METHODS ====================

func (s *carService) findCar(ctx context.Context, carID string) (*entity.Car, error) {
	id, err := parseID(carID, "carId")
	if err != nil {
		return nil, err
	}

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load car", zap.Error(err), zap.String("car_id", carID))
		return nil, storeError(err, "Car", "")
	}
	if car == nil {
		return nil, apperror.NotFound("Car")
	}
	return car, nil
}

func applyCarUpdate(car *entity.Car, req *request.UpdateCarRequest) {
	if req.Brand != nil {
		car.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		car.Model = strings.TrimSpace(*req.Model)
	}
	if req.Year != nil {
		car.Year = *req.Year
	}
	if req.Category != nil {
		car.Category = strings.TrimSpace(*req.Category)
	}
	if req.FuelType != nil {
		car.FuelType = *req.FuelType
	}
	if req.Transmission != nil {
		car.Transmission = *req.Transmission
	}
	if req.SeatingCapacity != nil {
		car.SeatingCapacity = *req.SeatingCapacity
	}
	if req.Location != nil {
		car.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerDay != nil {
		car.PricePerDay = *req.PricePerDay
	}
	if req.Description != nil {
		car.Description = *req.Description
	}
	if req.Features != nil {
		car.Features = *req.Features
	}
	if req.Image != nil {
		car.Image = req.Image
	}
	if req.IsAvailable != nil {
		car.IsAvailable = *req.IsAvailable
	}
}
