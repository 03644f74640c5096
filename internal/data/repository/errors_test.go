package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code     string
		conflict bool
	}{
		{pgExclusionViolation, true},
		{pgSerializationFailure, true},
		{pgDeadlockDetected, true},
		{pgUniqueViolation, true},
		{"23503", false}, // foreign key
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := classify(fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: tt.code}))
			assert.Equal(t, tt.conflict, errors.Is(err, ErrConflict))
		})
	}

	plain := errors.New("connection refused")
	assert.Same(t, plain, classify(plain))
}
