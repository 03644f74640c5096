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

type userRepo struct{ handle }

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	return r.write(func(d *state) error {
		for _, existing := range d.users {
			if strings.EqualFold(existing.Email, user.Email) {
				return fmt.Errorf("create user %s: %w", user.Email, repository.ErrConflict)
			}
		}
		d.users[user.ID] = cloneUser(user)
		return nil
	})
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	r.read(func(d *state) {
		if u, ok := d.users[id]; ok {
			out = cloneUser(u)
		}
	})
	return out, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.read(func(d *state) {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				out = cloneUser(u)
				return
			}
		}
	})
	return out, nil
}

func (r *userRepo) FindAll(_ context.Context, filter entity.UserFilter) ([]*entity.User, error) {
	var out []*entity.User
	search := strings.ToLower(filter.Search)
	r.read(func(d *state) {
		for _, u := range d.users {
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			if filter.IsBlocked != nil && u.IsBlocked != *filter.IsBlocked {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(u.Name), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				continue
			}
			out = append(out, cloneUser(u))
		}
	})
	newestFirst(out, func(u *entity.User) time.Time { return u.CreatedAt })
	return out, nil
}

func (r *userRepo) CountByRole(_ context.Context) (map[entity.UserRole]int64, error) {
	counts := make(map[entity.UserRole]int64)
	r.read(func(d *state) {
		for _, u := range d.users {
			counts[u.Role]++
		}
	})
	return counts, nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	return r.write(func(d *state) error {
		if _, ok := d.users[user.ID]; !ok {
			return fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
		}
		d.users[user.ID] = cloneUser(user)
		return nil
	})
}

// Delete cascades like the foreign keys in the SQL schema.
func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.write(func(d *state) error {
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		delete(d.users, id)
		for token, s := range d.sessions {
			if s.UserID == id {
				delete(d.sessions, token)
			}
		}
		for carID, c := range d.cars {
			if c.OwnerID == id {
				delete(d.cars, carID)
			}
		}
		for bookingID, b := range d.bookings {
			if b.UserID == id || b.OwnerID == id {
				delete(d.bookings, bookingID)
			} else if _, carExists := d.cars[b.CarID]; !carExists {
				delete(d.bookings, bookingID)
			}
		}
		return nil
	})
}
