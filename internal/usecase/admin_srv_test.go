package usecase

import (
	"context"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/dto/request"
	"car-rental/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestBlockUserCancelsAndReleases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confirmed := f.insertBooking(t, f.renter, entity.BookingStatusConfirmed, day(10), day(12))
	require.NoError(t, f.repo.Car.SetAvailability(ctx, f.car.ID, false))

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     f.renter.UserID,
		Token:      uuid.New(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, f.repo.Session.Create(ctx, session))

	resp, err := f.svc.Admin.SetUserBlocked(ctx, f.admin, f.renter.UserID.String(),
		&request.UpdateUserStatusRequest{IsBlocked: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, resp.User.IsBlocked)
	assert.Equal(t, 1, resp.CancelledBookings)

	assert.Equal(t, entity.BookingStatusCancelled, f.reloadBooking(t, confirmed.ID).Status)
	assert.True(t, f.reloadCar(t).IsAvailable)

	valid, err := f.repo.Session.FindValidSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, valid)

	_, err = f.svc.Booking.CreateBooking(ctx, f.renter, createReq(f, date(20), date(22)))
	requireCode(t, err, apperror.CodeForbidden)

	resp, err = f.svc.Admin.SetUserBlocked(ctx, f.admin, f.renter.UserID.String(),
		&request.UpdateUserStatusRequest{IsBlocked: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, resp.User.IsBlocked)
}

func TestBlockUserGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	block := &request.UpdateUserStatusRequest{IsBlocked: boolPtr(true)}

	_, err := f.svc.Admin.SetUserBlocked(ctx, f.owner, f.renter.UserID.String(), block)
	requireCode(t, err, apperror.CodeForbidden)

	_, err = f.svc.Admin.SetUserBlocked(ctx, f.admin, f.admin.UserID.String(), block)
	requireCode(t, err, apperror.CodeInvalidState)

	_, err = f.svc.Admin.SetUserBlocked(ctx, f.admin, uuid.NewString(), block)
	requireCode(t, err, apperror.CodeNotFound)

	_, err = f.svc.Admin.SetUserBlocked(ctx, f.admin, f.renter.UserID.String(), &request.UpdateUserStatusRequest{})
	requireCode(t, err, apperror.CodeValidation)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.insertBooking(t, f.renter, entity.BookingStatusActive, day(10), day(12))

	err := f.svc.Admin.DeleteUser(ctx, f.admin, f.admin.UserID.String())
	requireCode(t, err, apperror.CodeInvalidState)

	err = f.svc.Admin.DeleteUser(ctx, f.admin, f.renter.UserID.String())
	requireCode(t, err, apperror.CodeInvalidState)

	err = f.svc.Admin.DeleteUser(ctx, f.admin, f.owner.UserID.String())
	requireCode(t, err, apperror.CodeInvalidState)

	require.NoError(t, f.repo.Booking.UpdateStatus(ctx, b.ID, entity.BookingStatusCompleted))
	require.NoError(t, f.svc.Admin.DeleteUser(ctx, f.admin, f.renter.UserID.String()))

	user, err := f.repo.User.FindByID(ctx, f.renter.UserID)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestApproveCar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.addCar(t, f.owner.UserID, false)
	reason := "  blurry photos "

	resp, err := f.svc.Admin.ApproveCar(ctx, f.admin, pending.ID.String(),
		&request.ApproveCarRequest{IsApproved: boolPtr(false), Reason: &reason})
	require.NoError(t, err)
	assert.False(t, resp.IsApproved)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "blurry photos", *resp.RejectionReason)

	resp, err = f.svc.Admin.ApproveCar(ctx, f.admin, pending.ID.String(),
		&request.ApproveCarRequest{IsApproved: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, resp.IsApproved)
	assert.Nil(t, resp.RejectionReason)

	_, err = f.svc.Admin.ApproveCar(ctx, f.owner, pending.ID.String(),
		&request.ApproveCarRequest{IsApproved: boolPtr(true)})
	requireCode(t, err, apperror.CodeForbidden)

	f.car = pending
	_, err = f.svc.Booking.CreateBooking(ctx, f.renter, createReq(f, date(10), date(12)))
	require.NoError(t, err)
}

func TestAdminListingsAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insertBooking(t, f.renter, entity.BookingStatusCompleted, day(2), day(4))
	f.insertBooking(t, f.renter, entity.BookingStatusPending, day(10), day(12))

	users, err := f.svc.Admin.ListUsers(ctx, f.admin, entity.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	status := entity.BookingStatusPending
	bookings, err := f.svc.Admin.ListBookings(ctx, f.admin, entity.BookingFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.NotNil(t, bookings[0].Car)

	cars, err := f.svc.Admin.ListCars(ctx, f.admin, entity.CarFilter{})
	require.NoError(t, err)
	assert.Len(t, cars, 1)

	dash, err := f.svc.Admin.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.Users.Total)
	assert.Equal(t, int64(1), dash.Users.Owners)
	assert.Equal(t, int64(2), dash.Bookings.Total)
	assert.Equal(t, int64(1), dash.Bookings.ByStatus[entity.BookingStatusPending])
	assert.Equal(t, 200.0, dash.Bookings.Revenue)

	_, err = f.svc.Admin.Dashboard(ctx, f.renter)
	requireCode(t, err, apperror.CodeForbidden)
}

func TestExportBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insertBooking(t, f.renter, entity.BookingStatusCompleted, day(2), day(4))

	export, err := f.svc.Admin.ExportBookings(ctx, f.admin)
	require.NoError(t, err)
	assert.NotEmpty(t, export.Data)
	assert.Contains(t, export.FileName, "bookings_")

	_, err = f.svc.Admin.ExportBookings(ctx, f.owner)
	requireCode(t, err, apperror.CodeForbidden)
}
