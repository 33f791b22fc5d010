package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcnappeal/internal/auth"
	"pcnappeal/internal/platform/logger"
	id "pcnappeal/pkg/domain"
	"pcnappeal/pkg/requestcontext"
)

type echoModule struct{ path string }

func (m echoModule) Register(r chi.Router) {
	r.Get(m.path, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(requestcontext.UserID(req.Context()).String()))
	})
}

func testRouter(t *testing.T, checks map[string]HealthChecker) (*chi.Mux, string, id.UserID) {
	t.Helper()
	jwt := auth.NewJWTService("router-test-key", "pcnappeal")
	userID := id.NewUserID()
	token, err := jwt.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	router := New(Deps{
		Logger:       logger.New(),
		Validator:    jwt,
		Appeals:      echoModule{path: "/appeals"},
		Webhooks:     echoModule{path: "/webhooks/payment"},
		HealthChecks: checks,
	})
	return router, token, userID
}

func TestRouter_AuthBoundary(t *testing.T) {
	router, token, userID := testRouter(t, nil)

	t.Run("authenticated API requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/appeals", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("a valid token reaches the module with its identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/appeals", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("the webhook surface is outside the auth boundary", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/webhooks/payment", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("every response carries a request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestRouter_Healthz(t *testing.T) {
	t.Run("healthy dependencies report ok", func(t *testing.T) {
		router, _, _ := testRouter(t, map[string]HealthChecker{
			"postgres": func(context.Context) error { return nil },
		})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("a failing dependency degrades the status", func(t *testing.T) {
		router, _, _ := testRouter(t, map[string]HealthChecker{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}

func TestRouter_MetricsExposed(t *testing.T) {
	router, _, _ := testRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
