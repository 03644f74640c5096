package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"car-rental/internal/data/entity"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperror.NotFound("Booking"), http.StatusNotFound, "Booking not found"},
		{"conflict", apperror.Conflict("Car is already booked for these dates"), http.StatusConflict, "Car is already booked for these dates"},
		{"invalid state", apperror.InvalidState("Cannot cancel a completed booking"), http.StatusBadRequest, "Cannot cancel a completed booking"},
		{"unknown error hides cause", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeBody(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandleServiceErrorFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperror.ValidationFields("Validation failed", map[string]string{"carId": "This field is required"})
	handleServiceError(rec, zap.NewNop(), err, "create booking")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"carId":"This field is required"`)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Status string `json:"status"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"confirmed"}`))
	assert.True(t, decodeJSON(rec, req, &dst))
	assert.Equal(t, "confirmed", dst.Status)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.True(t, decodeJSON(rec, req, &dst), "empty body decodes to zero value")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{broken"))
	assert.False(t, decodeJSON(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActorFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := actorFrom(req)
	assert.False(t, ok)

	id := uuid.New()
	req = req.WithContext(utils.SetUserContext(req.Context(), id, string(entity.RoleOwner)))
	actor, ok := actorFrom(req)
	require.True(t, ok)
	assert.Equal(t, id, actor.UserID)
	assert.True(t, actor.IsOwner())
	assert.False(t, actor.IsAdmin())
}
