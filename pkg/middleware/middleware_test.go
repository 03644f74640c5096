package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"car-rental/internal/data/entity"
	"car-rental/internal/usecase"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuth struct {
	actors map[string]*usecase.Actor
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*usecase.Actor, error) {
	if a, ok := s.actors[token]; ok {
		return a, nil
	}
	if token == "blocked" {
		return nil, apperror.Forbidden("Your account is blocked")
	}
	return nil, apperror.Unauthorized("Invalid or expired session")
}

func echoRole(w http.ResponseWriter, r *http.Request) {
	role, _ := utils.GetRoleFromContext(r.Context())
	w.Write([]byte(role))
}

func TestAuthSession(t *testing.T) {
	auth := stubAuth{actors: map[string]*usecase.Actor{
		"good": {UserID: uuid.New(), Role: entity.RoleOwner},
	}}
	h := AuthSession(auth, zap.NewNop())(http.HandlerFunc(echoRole))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"blocked user", "Bearer blocked", http.StatusForbidden, ""},
		{"valid", "Bearer good", http.StatusOK, "owner"},
		{"lowercase scheme", "bearer good", http.StatusOK, "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := stubAuth{actors: map[string]*usecase.Actor{"good": {UserID: uuid.New(), Role: entity.RoleAdmin}}}
	h := OptionalAuth(auth, zap.NewNop())(http.HandlerFunc(echoRole))

	for header, want := range map[string]string{"": "", "Bearer nope": "", "Bearer good": "admin"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(zap.NewNop(), entity.RoleOwner, entity.RoleAdmin)(http.HandlerFunc(echoRole))

	call := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusForbidden, call("user"))
	assert.Equal(t, http.StatusOK, call("owner"))
	assert.Equal(t, http.StatusOK, call("admin"))
}

func TestRecoverWritesEnvelope(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(utils.RateLimitConfig{RPS: 0.001, Burst: 2}, zap.NewNop())
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/cars", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
