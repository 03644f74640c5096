package utils

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"car-rental/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"plain date", "2025-06-10", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", "2025-06-10T09:30:00Z", time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "10/06/2025", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestGenerateBookingCode(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 5, 9, 0, time.UTC)
	code := GenerateBookingCode(now)

	assert.Regexp(t, regexp.MustCompile(`^RENT-20250610-140509-\d{4}$`), code)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Role  string `validate:"oneof=user owner"`
	}

	errs := ValidateStruct(req{Email: "nope", Role: "admin"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Invalid email format", errs["Email"])
	assert.Equal(t, "Must be one of: user, owner", errs["Role"])
	assert.Equal(t, "Email: Invalid email format; Role: Must be one of: user, owner", FormatValidationErrors(errs))

	assert.Nil(t, ValidateStruct(req{Email: "a@b.co", Role: "user"}))
}

func TestResponseAppError(t *testing.T) {
	t.Run("client error keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResponseAppError(rec, apperror.Conflict("Car is already booked for the selected dates"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Car is already booked for the selected dates"}`, rec.Body.String())
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResponseAppError(rec, apperror.Internal("pq: relation missing", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
	})
}

func TestResponseKeyed(t *testing.T) {
	t.Run("payload under its own key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResponseCreatedAs(rec, "Booking created successfully", "booking", map[string]string{"status": "pending"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"success":true,"message":"Booking created successfully","booking":{"status":"pending"}}`,
			rec.Body.String())
	})

	t.Run("scalar payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResponseSuccessAs(rec, "Car is not available for selected dates", "available", false)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"success":true,"message":"Car is not available for selected dates","available":false}`,
			rec.Body.String())
	})
}
