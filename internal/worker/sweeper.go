// Package worker holds background jobs started next to the HTTP server.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PendingExpirer cancels pending bookings older than the given age.
type PendingExpirer interface {
	ExpirePendingBookings(ctx context.Context, olderThan time.Duration) (int, error)
}

// SessionCleaner drops expired sessions.
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// Sweeper periodically expires stale pending bookings and expired sessions.
type Sweeper struct {
	bookings PendingExpirer
	sessions SessionCleaner
	ttl      time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(bookings PendingExpirer, sessions SessionCleaner, ttl, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		bookings: bookings,
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		log:      log.With(zap.String("component", "sweeper")),
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Sweeper started",
		zap.Duration("pending_ttl", s.ttl),
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. A zero TTL leaves pending bookings alone.
func (s *Sweeper) Sweep(ctx context.Context) {
	if s.ttl > 0 && s.bookings != nil {
		if _, err := s.bookings.ExpirePendingBookings(ctx, s.ttl); err != nil {
			s.log.Error("Failed to expire pending bookings", zap.Error(err))
		}
	}

	if s.sessions != nil {
		removed, err := s.sessions.CleanExpiredSessions(ctx)
		if err != nil {
			s.log.Error("Failed to clean expired sessions", zap.Error(err))
		} else if removed > 0 {
			s.log.Info("Expired sessions removed", zap.Int64("count", removed))
		}
	}
}
