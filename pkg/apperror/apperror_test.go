package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", Validation("bad dates"), CodeValidation, http.StatusBadRequest},
		{"not found", NotFound("Car"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("already booked"), CodeConflict, http.StatusConflict},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"invalid state", InvalidState("terminal"), CodeInvalidState, http.StatusBadRequest},
		{"unauthorized", Unauthorized("login"), CodeUnauthorized, http.StatusUnauthorized},
		{"rate limited", TooManyRequests("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}

	assert.Equal(t, "Car not found", NotFound("Car").Message)
}

func TestError(t *testing.T) {
	assert.Equal(t, "CONFLICT: taken", Conflict("taken").Error())

	cause := errors.New("connection reset")
	assert.Equal(t, "INTERNAL_ERROR: db (caused by: connection reset)", Internal("db", cause).Error())
}

func TestAsFindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", Conflict("car already booked"))

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeConflict, got.Code)
	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))
}

func TestAsFallsBackToInternal(t *testing.T) {
	cause := errors.New("unexpected")

	got := As(cause)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.ErrorIs(t, got, cause)
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("Validation failed", map[string]string{"CarID": "This field is required"})
	assert.Equal(t, "This field is required", err.Details["CarID"])
}
