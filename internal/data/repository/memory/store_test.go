package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seed(t *testing.T, repo *repository.Repository) (*entity.User, *entity.Car) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	owner := &entity.User{Base: entity.NewBase(now), Name: "Owner", Email: "owner@example.com", Role: entity.RoleOwner}
	require.NoError(t, repo.User.Create(ctx, owner))

	car := &entity.Car{
		Base:        entity.NewBase(now),
		OwnerID:     owner.ID,
		Brand:       "Toyota",
		Model:       "Corolla",
		Location:    "Lisbon",
		PricePerDay: 100,
		Features:    []string{"GPS"},
		IsApproved:  true,
		IsAvailable: true,
	}
	require.NoError(t, repo.Car.Create(ctx, car))
	return owner, car
}

func booking(car *entity.Car, renter uuid.UUID, status entity.BookingStatus, start, end time.Time) *entity.Booking {
	return &entity.Booking{
		Base:        entity.NewBase(time.Now()),
		BookingCode: uuid.NewString(),
		UserID:      renter,
		CarID:       car.ID,
		OwnerID:     car.OwnerID,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	repo := NewRepository(zap.NewNop())
	_, car := seed(t, repo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b := booking(car, uuid.New(), entity.BookingStatusPending, time.Now(), time.Now().Add(48*time.Hour))
		require.NoError(t, tx.Booking.Create(ctx, b))
		require.NoError(t, tx.Car.SetAvailability(ctx, car.ID, false))
		return boom
	})
	require.ErrorIs(t, err, boom)

	bookings, err := repo.Booking.FindAll(ctx, entity.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)

	got, err := repo.Car.FindByID(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
}

func TestNestedWithinTxJoinsOuter(t *testing.T) {
	repo := NewRepository(zap.NewNop())
	_, car := seed(t, repo)
	ctx := context.Background()

	err := repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		return tx.Tx.WithinTx(ctx, func(inner *repository.Repository) error {
			return inner.Car.SetAvailability(ctx, car.ID, false)
		})
	})
	require.NoError(t, err)

	got, _ := repo.Car.FindByID(ctx, car.ID)
	assert.False(t, got.IsAvailable)
}

func TestBlockingOverlapRejected(t *testing.T) {
	repo := NewRepository(zap.NewNop())
	_, car := seed(t, repo)
	ctx := context.Background()
	start := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)

	first := booking(car, uuid.New(), entity.BookingStatusConfirmed, start, start.AddDate(0, 0, 3))
	require.NoError(t, repo.Booking.Create(ctx, first))

	clash := booking(car, uuid.New(), entity.BookingStatusConfirmed, start.AddDate(0, 0, 3), start.AddDate(0, 0, 5))
	assert.ErrorIs(t, repo.Booking.Create(ctx, clash), repository.ErrConflict)

	// pending bookings do not occupy the calendar
	pending := booking(car, uuid.New(), entity.BookingStatusPending, start, start.AddDate(0, 0, 1))
	require.NoError(t, repo.Booking.Create(ctx, pending))
	assert.ErrorIs(t, repo.Booking.UpdateStatus(ctx, pending.ID, entity.BookingStatusConfirmed), repository.ErrConflict)

	blocking, err := repo.Booking.FindBlocking(ctx, car.ID, start, start.AddDate(0, 0, 1), nil)
	require.NoError(t, err)
	require.Len(t, blocking, 1)
	assert.Equal(t, first.ID, blocking[0].ID)

	blocking, err = repo.Booking.FindBlocking(ctx, car.ID, start, start.AddDate(0, 0, 1), &first.ID)
	require.NoError(t, err)
	assert.Empty(t, blocking)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	repo := NewRepository(zap.NewNop())
	_, car := seed(t, repo)
	ctx := context.Background()

	got, _ := repo.Car.FindByID(ctx, car.ID)
	got.PricePerDay = 1
	got.Features[0] = "changed"

	again, _ := repo.Car.FindByID(ctx, car.ID)
	assert.Equal(t, 100.0, again.PricePerDay)
	assert.Equal(t, []string{"GPS"}, again.Features)
}

func TestFindAvailableInRange(t *testing.T) {
	repo := NewRepository(zap.NewNop())
	owner, car := seed(t, repo)
	ctx := context.Background()
	start := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

	other := &entity.Car{
		Base: entity.NewBase(time.Now()), OwnerID: owner.ID, Brand: "Fiat", Model: "500",
		Location: "Lisbon Airport", PricePerDay: 40, IsApproved: true, IsAvailable: true,
	}
	require.NoError(t, repo.Car.Create(ctx, other))
	require.NoError(t, repo.Booking.Create(ctx,
		booking(car, uuid.New(), entity.BookingStatusActive, start, start.AddDate(0, 0, 2))))

	cars, err := repo.Car.FindAvailableInRange(ctx, "lisbon", start.AddDate(0, 0, 1), start.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, other.ID, cars[0].ID)

	cars, err = repo.Car.FindAvailableInRange(ctx, "lisbon", start.AddDate(0, 0, 3), start.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Len(t, cars, 2)
}
