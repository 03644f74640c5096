package usecase

import (
	"context"
	"testing"

	"car-rental/internal/data/entity"
	"car-rental/internal/dto/request"
	"car-rental/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCarRequest() *request.CreateCarRequest {
	return &request.CreateCarRequest{
		Brand:           "BMW",
		Model:           "X5",
		Year:            2023,
		Category:        "SUV",
		FuelType:        "Diesel",
		Transmission:    "Automatic",
		SeatingCapacity: 5,
		Location:        "Munich",
		PricePerDay:     180,
		Features:        []string{"GPS", "Heated seats"},
	}
}

func TestAddCar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Car.AddCar(ctx, f.renter, validCarRequest())
	requireCode(t, err, apperror.CodeForbidden)

	bad := validCarRequest()
	bad.PricePerDay = 0
	_, err = f.svc.Car.AddCar(ctx, f.owner, bad)
	requireCode(t, err, apperror.CodeValidation)

	resp, err := f.svc.Car.AddCar(ctx, f.owner, validCarRequest())
	require.NoError(t, err)
	assert.False(t, resp.IsApproved)
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, f.owner.UserID.String(), resp.OwnerID)
}

func TestGetCarHidesUnapproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.addCar(t, f.owner.UserID, false)

	_, err := f.svc.Car.GetCar(ctx, nil, pending.ID.String())
	requireCode(t, err, apperror.CodeForbidden)

	_, err = f.svc.Car.GetCar(ctx, &f.renter, pending.ID.String())
	requireCode(t, err, apperror.CodeForbidden)

	_, err = f.svc.Car.GetCar(ctx, &f.owner, pending.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Car.GetCar(ctx, &f.admin, pending.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Car.GetCar(ctx, nil, f.car.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Car.GetCar(ctx, nil, "not-a-uuid")
	requireCode(t, err, apperror.CodeValidation)
}

func TestListAndSearchCars(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCar(t, f.owner.UserID, false)
	held := f.addCar(t, f.owner.UserID, true)
	require.NoError(t, f.repo.Car.SetAvailability(ctx, held.ID, false))

	cars, err := f.svc.Car.ListCars(ctx, entity.CarFilter{})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, f.car.ID.String(), cars[0].ID)

	maxPrice := 50.0
	cars, err = f.svc.Car.ListCars(ctx, entity.CarFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Empty(t, cars)

	cars, err = f.svc.Car.SearchCars(ctx, "corolla")
	require.NoError(t, err)
	assert.Len(t, cars, 2)

	_, err = f.svc.Car.SearchCars(ctx, "  ")
	requireCode(t, err, apperror.CodeValidation)
}

func TestUpdateCar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.addUser(t, "other-owner@example.com", entity.RoleOwner)
	location := "Hamburg"

	_, err := f.svc.Car.UpdateCar(ctx, other, f.car.ID.String(), &request.UpdateCarRequest{Location: &location})
	requireCode(t, err, apperror.CodeForbidden)

	resp, err := f.svc.Car.UpdateCar(ctx, f.owner, f.car.ID.String(), &request.UpdateCarRequest{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", resp.Location)
	assert.True(t, resp.IsApproved)

	// A car held by a booking cannot be flipped back by hand.
	f.insertBooking(t, f.renter, entity.BookingStatusPending, day(10), day(12))
	require.NoError(t, f.repo.Car.SetAvailability(ctx, f.car.ID, false))
	available := true
	_, err = f.svc.Car.UpdateCar(ctx, f.owner, f.car.ID.String(), &request.UpdateCarRequest{IsAvailable: &available})
	requireCode(t, err, apperror.CodeInvalidState)
}

func TestDeleteCar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.insertBooking(t, f.renter, entity.BookingStatusConfirmed, day(10), day(12))

	err := f.svc.Car.DeleteCar(ctx, f.renter, f.car.ID.String())
	requireCode(t, err, apperror.CodeForbidden)

	err = f.svc.Car.DeleteCar(ctx, f.owner, f.car.ID.String())
	requireCode(t, err, apperror.CodeInvalidState)

	require.NoError(t, f.repo.Booking.UpdateStatus(ctx, b.ID, entity.BookingStatusCompleted))
	require.NoError(t, f.svc.Car.DeleteCar(ctx, f.owner, f.car.ID.String()))

	_, err = f.svc.Car.GetCar(ctx, &f.owner, f.car.ID.String())
	requireCode(t, err, apperror.CodeNotFound)
}

func TestOwnerDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCar(t, f.owner.UserID, false)
	done := f.insertBooking(t, f.renter, entity.BookingStatusCompleted, day(2), day(4))
	f.insertBooking(t, f.renter, entity.BookingStatusPending, day(10), day(12))

	dash, err := f.svc.Car.OwnerDashboard(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.Cars.Total)
	assert.Equal(t, int64(1), dash.Cars.PendingApproval)
	assert.Equal(t, int64(2), dash.Bookings.Total)
	assert.Equal(t, done.TotalAmount, dash.Bookings.Revenue)
	assert.Len(t, dash.RecentBookings, 2)

	_, err = f.svc.Car.OwnerDashboard(ctx, f.renter)
	requireCode(t, err, apperror.CodeForbidden)
}
