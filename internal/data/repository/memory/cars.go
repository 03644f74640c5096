package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

type carRepo struct{ handle }

func (r *carRepo) Create(_ context.Context, car *entity.Car) error {
	return r.write(func(d *state) error {
		if _, ok := d.users[car.OwnerID]; !ok {
			return fmt.Errorf("create car: owner %s does not exist", car.OwnerID)
		}
		d.cars[car.ID] = cloneCar(car)
		return nil
	})
}

func (r *carRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Car, error) {
	var out *entity.Car
	r.read(func(d *state) {
		if c, ok := d.cars[id]; ok {
			out = cloneCar(c)
		}
	})
	return out, nil
}

// FindByIDForUpdate needs no row lock, transactions are already serialized.
func (r *carRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	return r.FindByID(ctx, id)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchCar(c *entity.Car, f entity.CarFilter) bool {
	switch {
	case f.Category != "" && !strings.EqualFold(c.Category, f.Category):
		return false
	case f.Transmission != "" && !strings.EqualFold(c.Transmission, f.Transmission):
		return false
	case f.FuelType != "" && !strings.EqualFold(c.FuelType, f.FuelType):
		return false
	case f.Location != "" && !containsFold(c.Location, f.Location):
		return false
	case f.MinPrice != nil && c.PricePerDay < *f.MinPrice:
		return false
	case f.MaxPrice != nil && c.PricePerDay > *f.MaxPrice:
		return false
	case f.IsApproved != nil && c.IsApproved != *f.IsApproved:
		return false
	case f.IsAvailable != nil && c.IsAvailable != *f.IsAvailable:
		return false
	case f.OwnerID != nil && c.OwnerID != *f.OwnerID:
		return false
	}

	if f.Query != "" {
		return containsFold(c.Brand, f.Query) || containsFold(c.Model, f.Query) ||
			containsFold(c.Category, f.Query) || containsFold(c.Location, f.Query)
	}
	return true
}

func (r *carRepo) FindAll(_ context.Context, filter entity.CarFilter) ([]*entity.Car, error) {
	var out []*entity.Car
	r.read(func(d *state) {
		for _, c := range d.cars {
			if matchCar(c, filter) {
				out = append(out, cloneCar(c))
			}
		}
	})
	newestFirst(out, func(c *entity.Car) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *carRepo) FindAvailableInRange(_ context.Context, location string, start, end time.Time) ([]*entity.Car, error) {
	var out []*entity.Car
	r.read(func(d *state) {
		for _, c := range d.cars {
			if !c.CanBeBooked() || !containsFold(c.Location, location) {
				continue
			}
			if !carBusy(d, c.ID, start, end, nil) {
				out = append(out, cloneCar(c))
			}
		}
	})
	newestFirst(out, func(c *entity.Car) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *carRepo) Update(_ context.Context, car *entity.Car) error {
	return r.write(func(d *state) error {
		existing, ok := d.cars[car.ID]
		if !ok {
			return fmt.Errorf("car %s: %w", car.ID, repository.ErrNotFound)
		}
		updated := cloneCar(car)
		// approval is only changed through SetApproval
		updated.IsApproved = existing.IsApproved
		updated.RejectionReason = existing.RejectionReason
		updated.OwnerID = existing.OwnerID
		updated.CreatedAt = existing.CreatedAt
		d.cars[car.ID] = updated
		return nil
	})
}

func (r *carRepo) SetAvailability(_ context.Context, id uuid.UUID, available bool) error {
	now := r.now()
	return r.write(func(d *state) error {
		c, ok := d.cars[id]
		if !ok {
			return fmt.Errorf("car %s: %w", id, repository.ErrNotFound)
		}
		c.IsAvailable = available
		c.UpdatedAt = now
		return nil
	})
}

func (r *carRepo) SetApproval(_ context.Context, id uuid.UUID, approved bool, reason *string) error {
	now := r.now()
	return r.write(func(d *state) error {
		c, ok := d.cars[id]
		if !ok {
			return fmt.Errorf("car %s: %w", id, repository.ErrNotFound)
		}
		c.IsApproved = approved
		c.RejectionReason = reason
		c.UpdatedAt = now
		return nil
	})
}

func (r *carRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.write(func(d *state) error {
		if _, ok := d.cars[id]; !ok {
			return fmt.Errorf("car %s: %w", id, repository.ErrNotFound)
		}
		delete(d.cars, id)
		for bookingID, b := range d.bookings {
			if b.CarID == id {
				delete(d.bookings, bookingID)
			}
		}
		return nil
	})
}

func (r *carRepo) Stats(_ context.Context, ownerID *uuid.UUID) (*entity.CarStats, error) {
	stats := &entity.CarStats{}
	r.read(func(d *state) {
		for _, c := range d.cars {
			if ownerID != nil && c.OwnerID != *ownerID {
				continue
			}
			stats.Total++
			if c.IsApproved {
				stats.Approved++
				if c.IsAvailable {
					stats.Available++
				}
			} else {
				stats.PendingApproval++
			}
		}
	})
	return stats, nil
}

// carBusy reports a confirmed or active booking of carID touching [start, end].
func carBusy(d *state, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	for _, b := range d.bookings {
		if b.CarID != carID || !b.Status.IsBlocking() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
