package usecase

import (
	"context"
	"strings"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// IsRangeFree reports whether no confirmed or active booking of the car
	// overlaps [start, end]. excludeID skips one booking, used when that
	// booking itself is being re-validated.
	IsRangeFree(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
	FindAvailable(ctx context.Context, req *request.FindAvailableRequest) (*response.FindAvailableResponse, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) IsRangeFree(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	if !start.Before(end) {
		return false, apperror.Validation("End date must be after start date")
	}

	free, err := rangeFree(ctx, s.repo.Booking, carID, start, end, excludeID)
	if err != nil {
		s.log.Error("Failed to resolve availability", zap.Error(err), zap.String("car_id", carID.String()))
		return false, storeError(err, "Car", "Availability check conflicted, please retry")
	}
	return free, nil
}

func (s *availabilityService) CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if err := validate(req); err != nil {
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

	car, err := s.repo.Car.FindByID(ctx, carID)
	if err != nil {
		s.log.Error("Failed to load car", zap.Error(err), zap.String("car_id", req.CarID))
		return nil, storeError(err, "Car", "")
	}
	if car == nil {
		return nil, apperror.NotFound("Car")
	}

	free, err := s.IsRangeFree(ctx, carID, start, end, nil)
	if err != nil {
		return nil, err
	}

	return &response.AvailabilityResponse{
		CarID:     req.CarID,
		StartDate: start,
		EndDate:   end,
		Available: free,
	}, nil
}

func (s *availabilityService) FindAvailable(ctx context.Context, req *request.FindAvailableRequest) (*response.FindAvailableResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	location := strings.TrimSpace(req.Location)

	cars, err := s.repo.Car.FindAvailableInRange(ctx, location, start, end)
	if err != nil {
		s.log.Error("Failed to search available cars", zap.Error(err), zap.String("location", location))
		return nil, storeError(err, "Car", "")
	}

	s.log.Debug("Available cars resolved",
		zap.String("location", location),
		zap.Int("count", len(cars)),
	)

	return &response.FindAvailableResponse{
		Location:  location,
		StartDate: start,
		EndDate:   end,
		Cars:      response.CarsToResponse(cars),
	}, nil
}

// rangeFree is the resolver shared with the lifecycle, which calls it with
// transaction-bound repositories.
func rangeFree(ctx context.Context, bookings repository.BookingRepository, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	conflicts, err := bookings.FindBlocking(ctx, carID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
