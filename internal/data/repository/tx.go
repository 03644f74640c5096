package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

// WithinTx runs fn at SERIALIZABLE isolation. Serialization failures surface
// as ErrConflict, they are not retried here.
func (t *pgTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		t.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			t.log.Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(Joined(newRepository(tx, t.log))); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
