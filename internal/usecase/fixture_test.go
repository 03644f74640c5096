package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/data/repository/memory"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// testClock starts at baseTime. With step set it advances it by one second per
// call so generated booking codes stay unique.
type testClock struct {
	offset atomic.Int64
	step   bool
}

func (c *testClock) Now() time.Time {
	if c.step {
		return baseTime.Add(time.Duration(c.offset.Add(int64(time.Second))))
	}
	return baseTime.Add(time.Duration(c.offset.Load()))
}

func (c *testClock) Advance(d time.Duration) {
	c.offset.Add(int64(d))
}

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	clock  *testClock
	admin  Actor
	owner  Actor
	renter Actor
	car    *entity.Car
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithClock(t, &testClock{step: true}, opts...)
}

func newFixtureWithClock(t *testing.T, clock *testClock, opts ...Option) *fixture {
	t.Helper()

	repo := memory.NewRepository(zap.NewNop())
	config := &utils.Config{
		Booking: utils.BookingConfig{CreateWindow: time.Minute},
		Session: utils.SessionConfig{ExpiryHours: 24},
	}
	opts = append([]Option{WithClock(clock.Now)}, opts...)

	f := &fixture{
		svc:   NewService(repo, config, zap.NewNop(), opts...),
		repo:  repo,
		clock: clock,
	}
	f.admin = f.addUser(t, "admin@example.com", entity.RoleAdmin)
	f.owner = f.addUser(t, "owner@example.com", entity.RoleOwner)
	f.renter = f.addUser(t, "renter@example.com", entity.RoleUser)
	f.car = f.addCar(t, f.owner.UserID, true)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role entity.UserRole) Actor {
	t.Helper()
	user := &entity.User{
		Base:  entity.NewBase(baseTime),
		Name:  email,
		Email: email,
		Role:  role,
	}
	require.NoError(t, f.repo.User.Create(context.Background(), user))
	return Actor{UserID: user.ID, Role: role}
}

func (f *fixture) addCar(t *testing.T, ownerID uuid.UUID, approved bool) *entity.Car {
	t.Helper()
	car := &entity.Car{
		Base:            entity.NewBase(baseTime),
		OwnerID:         ownerID,
		Brand:           "Toyota",
		Model:           "Corolla",
		Year:            2022,
		Category:        "Sedan",
		FuelType:        "Petrol",
		Transmission:    "Automatic",
		SeatingCapacity: 5,
		Location:        "Berlin Mitte",
		PricePerDay:     100,
		IsApproved:      approved,
		IsAvailable:     true,
	}
	require.NoError(t, f.repo.Car.Create(context.Background(), car))
	return car
}

// insertBooking stores a booking directly, bypassing the lifecycle.
func (f *fixture) insertBooking(t *testing.T, renter Actor, status entity.BookingStatus, start, end time.Time) *entity.Booking {
	t.Helper()
	days := entity.RentalDays(start, end)
	b := &entity.Booking{
		Base:          entity.NewBase(f.clock.Now()),
		BookingCode:   uuid.NewString(),
		UserID:        renter.UserID,
		CarID:         f.car.ID,
		OwnerID:       f.car.OwnerID,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     days,
		PricePerDay:   f.car.PricePerDay,
		TotalAmount:   float64(days) * f.car.PricePerDay,
		Status:        status,
		PaymentStatus: entity.PaymentStatusPending,
		PaymentMethod: entity.DefaultPaymentMethod,
	}
	require.NoError(t, f.repo.Booking.Create(context.Background(), b))
	return b
}

func (f *fixture) reloadCar(t *testing.T) *entity.Car {
	t.Helper()
	car, err := f.repo.Car.FindByID(context.Background(), f.car.ID)
	require.NoError(t, err)
	require.NotNil(t, car)
	return car
}

func (f *fixture) reloadBooking(t *testing.T, id uuid.UUID) *entity.Booking {
	t.Helper()
	b, err := f.repo.Booking.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func date(d int) string {
	return day(d).Format("2006-01-02")
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperror.HasCode(err, code), "want %s, got %v", code, err)
}
