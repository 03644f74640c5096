package memory

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

type sessionRepo struct{ handle }

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	return r.write(func(d *state) error {
		cp := *session
		d.sessions[session.Token] = &cp
		return nil
	})
}

func (r *sessionRepo) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	var out *entity.Session
	now := r.now()
	r.read(func(d *state) {
		if s, ok := d.sessions[token]; ok && s.IsValid(now) {
			cp := *s
			out = &cp
		}
	})
	return out, nil
}

func (r *sessionRepo) Revoke(_ context.Context, token uuid.UUID) error {
	now := r.now()
	return r.write(func(d *state) error {
		s, ok := d.sessions[token]
		if !ok || s.RevokedAt != nil {
			return fmt.Errorf("session: %w", repository.ErrNotFound)
		}
		s.RevokedAt = &now
		return nil
	})
}

func (r *sessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	now := r.now()
	return r.write(func(d *state) error {
		for _, s := range d.sessions {
			if s.UserID == userID && s.RevokedAt == nil {
				s.RevokedAt = &now
			}
		}
		return nil
	})
}

func (r *sessionRepo) CleanExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	var removed int64
	err := r.write(func(d *state) error {
		for token, s := range d.sessions {
			if s.ExpiresAt.Before(before) {
				delete(d.sessions, token)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
