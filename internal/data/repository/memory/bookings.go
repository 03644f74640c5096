package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

type bookingRepo struct{ handle }

// Create enforces the same no-overlap rule as the exclusion constraint.
func (r *bookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	return r.write(func(d *state) error {
		if _, ok := d.cars[booking.CarID]; !ok {
			return fmt.Errorf("create booking: car %s does not exist", booking.CarID)
		}
		for _, b := range d.bookings {
			if b.BookingCode == booking.BookingCode {
				return fmt.Errorf("create booking %s: %w", booking.BookingCode, repository.ErrConflict)
			}
		}
		if booking.Status.IsBlocking() && carBusy(d, booking.CarID, booking.StartDate, booking.EndDate, nil) {
			return fmt.Errorf("create booking %s: %w", booking.BookingCode, repository.ErrConflict)
		}
		d.bookings[booking.ID] = cloneBooking(booking)
		return nil
	})
}

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	var out *entity.Booking
	r.read(func(d *state) {
		if b, ok := d.bookings[id]; ok {
			out = cloneBooking(b)
		}
	})
	return out, nil
}

func (r *bookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepo) collect(match func(b *entity.Booking) bool) []*entity.Booking {
	var out []*entity.Booking
	r.read(func(d *state) {
		for _, b := range d.bookings {
			if match(b) {
				out = append(out, cloneBooking(b))
			}
		}
	})
	return out
}

func (r *bookingRepo) FindAll(_ context.Context, f entity.BookingFilter) ([]*entity.Booking, error) {
	out := r.collect(func(b *entity.Booking) bool {
		switch {
		case f.Status != nil && b.Status != *f.Status:
			return false
		case f.PaymentStatus != nil && b.PaymentStatus != *f.PaymentStatus:
			return false
		case f.UserID != nil && b.UserID != *f.UserID:
			return false
		case f.OwnerID != nil && b.OwnerID != *f.OwnerID:
			return false
		case f.CarID != nil && b.CarID != *f.CarID:
			return false
		}
		return true
	})
	newestFirst(out, func(b *entity.Booking) time.Time { return b.CreatedAt })
	return out, nil
}

func (r *bookingRepo) FindBlocking(_ context.Context, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	out := r.collect(func(b *entity.Booking) bool {
		if b.CarID != carID || !b.Status.IsBlocking() {
			return false
		}
		if excludeID != nil && b.ID == *excludeID {
			return false
		}
		return b.Overlaps(start, end)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *bookingRepo) ExistsForCar(_ context.Context, carID uuid.UUID, statuses []entity.BookingStatus, excludeID *uuid.UUID) (bool, error) {
	found := r.collect(func(b *entity.Booking) bool {
		if excludeID != nil && b.ID == *excludeID {
			return false
		}
		return b.CarID == carID && hasStatus(statuses, b.Status)
	})
	return len(found) > 0, nil
}

func (r *bookingRepo) FindByUserAndStatuses(_ context.Context, userID uuid.UUID, statuses []entity.BookingStatus) ([]*entity.Booking, error) {
	out := r.collect(func(b *entity.Booking) bool {
		return b.UserID == userID && hasStatus(statuses, b.Status)
	})
	newestFirst(out, func(b *entity.Booking) time.Time { return b.CreatedAt })
	return out, nil
}

func (r *bookingRepo) FindStalePending(_ context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	out := r.collect(func(b *entity.Booking) bool {
		return b.Status == entity.BookingStatusPending && b.CreatedAt.Before(createdBefore)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *bookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus) error {
	now := r.now()
	return r.write(func(d *state) error {
		b, ok := d.bookings[id]
		if !ok {
			return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
		}
		if status.IsBlocking() && carBusy(d, b.CarID, b.StartDate, b.EndDate, &b.ID) {
			return fmt.Errorf("update status of booking %s: %w", id, repository.ErrConflict)
		}
		b.Status = status
		b.UpdatedAt = now
		return nil
	})
}

func (r *bookingRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	now := r.now()
	return r.write(func(d *state) error {
		b, ok := d.bookings[id]
		if !ok {
			return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
		}
		b.PaymentStatus = status
		b.UpdatedAt = now
		return nil
	})
}

func (r *bookingRepo) Stats(_ context.Context, ownerID *uuid.UUID) (*entity.BookingStats, error) {
	stats := &entity.BookingStats{ByStatus: make(map[entity.BookingStatus]int64)}
	r.read(func(d *state) {
		for _, b := range d.bookings {
			if ownerID != nil && b.OwnerID != *ownerID {
				continue
			}
			stats.Total++
			stats.ByStatus[b.Status]++
			if b.Status == entity.BookingStatusCompleted {
				stats.Revenue += b.TotalAmount
			}
		}
	})
	return stats, nil
}
