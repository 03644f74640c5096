// Package memory is an in-process storage driver with the same transactional
// guarantees as the Postgres repositories: transactions are serialized and
// roll back to a snapshot on error.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type state struct {
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.Session // keyed by token
	cars     map[uuid.UUID]*entity.Car
	bookings map[uuid.UUID]*entity.Booking
}

func newState() *state {
	return &state{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.Session),
		cars:     make(map[uuid.UUID]*entity.Car),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range s.sessions {
		cp := *v
		c.sessions[k] = &cp
	}
	for k, v := range s.cars {
		c.cars[k] = cloneCar(v)
	}
	for k, v := range s.bookings {
		cp := *v
		c.bookings[k] = &cp
	}
	return c
}

// Store holds all data. txMu serializes writers; dataMu guards the maps.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	data   *state
	log    *zap.Logger
	now    func() time.Time
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		data: newState(),
		log:  log.With(zap.String("repository", "memory")),
		now:  time.Now,
	}
}

// NewRepository returns the repository set backed by a fresh store.
func NewRepository(log *zap.Logger) *repository.Repository {
	return NewStore(log).Repository()
}

func (s *Store) Repository() *repository.Repository {
	return s.repository(false)
}

func (s *Store) repository(inTx bool) *repository.Repository {
	h := handle{store: s, inTx: inTx}
	repo := &repository.Repository{
		User:    &userRepo{h},
		Session: &sessionRepo{h},
		Car:     &carRepo{h},
		Booking: &bookingRepo{h},
	}
	if inTx {
		return repository.Joined(repo)
	}
	repo.Tx = s
	return repo
}

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.dataMu.RLock()
	snapshot := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(s.repository(true)); err != nil {
		s.dataMu.Lock()
		s.data = snapshot
		s.dataMu.Unlock()
		s.log.Debug("Transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}

// handle is shared by the per-entity repositories.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) read(fn func(d *state)) {
	h.store.dataMu.RLock()
	defer h.store.dataMu.RUnlock()
	fn(h.store.data)
}

// write takes the transaction lock itself unless the caller already holds it.
func (h handle) write(fn func(d *state) error) error {
	if !h.inTx {
		h.store.txMu.Lock()
		defer h.store.txMu.Unlock()
	}
	h.store.dataMu.Lock()
	defer h.store.dataMu.Unlock()
	return fn(h.store.data)
}

func (h handle) now() time.Time {
	return h.store.now()
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

func cloneCar(c *entity.Car) *entity.Car {
	cp := *c
	cp.Features = append([]string(nil), c.Features...)
	return &cp
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	cp := *b
	return &cp
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func hasStatus(statuses []entity.BookingStatus, s entity.BookingStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
