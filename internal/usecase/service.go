package usecase

import (
	"context"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/internal/events"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Car          CarService
	Availability AvailabilityService
	Booking      BookingService
	Admin        AdminService
}

// BookingLimiter throttles booking creation per renter.
type BookingLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type options struct {
	limiter BookingLimiter
	bus     *events.EventBus
	clock   func() time.Time
}

type Option func(*options)

func WithLimiter(l BookingLimiter) Option {
	return func(o *options) { o.limiter = l }
}

func WithEventBus(bus *events.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithClock overrides time.Now, used by tests to pin "today".
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, opts ...Option) *Service {
	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	availability := NewAvailabilityService(repo, log)
	booking := NewBookingService(repo, config, log, o)

	return &Service{
		Auth:         NewAuthService(repo, config, log, o),
		User:         NewUserService(repo, log, o),
		Car:          NewCarService(repo, log, o),
		Availability: availability,
		Booking:      booking,
		Admin:        NewAdminService(repo, config, log, o),
	}
}
