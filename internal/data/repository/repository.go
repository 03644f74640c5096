package repository

import (
	"context"

	"car-rental/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Car     CarRepository
	Booking BookingRepository
	Tx      Transactor
}

// Transactor runs fn against repositories bound to a single transaction.
// Any error returned by fn rolls the transaction back. Calling WithinTx on a
// repository set that is already transactional reuses the open transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = &pgTransactor{db: db, log: log.With(zap.String("repository", "tx"))}
	return repo
}

func newRepository(db database.DBTX, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Car:     NewCarRepository(db, log),
		Booking: NewBookingRepository(db, log),
	}
}

// joinedTx is the Transactor of a repository set that already lives inside a
// transaction.
type joinedTx struct {
	repo *Repository
}

func (j joinedTx) WithinTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}

// Joined marks repo as transactional so nested WithinTx calls reuse it.
func Joined(repo *Repository) *Repository {
	repo.Tx = joinedTx{repo: repo}
	return repo
}
