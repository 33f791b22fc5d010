// Package httpapi assembles the HTTP surface: middleware chain, public
// endpoints, and the authenticated API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pcnappeal/internal/auth"
	"pcnappeal/pkg/platform/httputil"
	"pcnappeal/pkg/platform/middleware"
)

// Registrar mounts a module's endpoints on a router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports one dependency's health.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator auth.TokenValidator

	// Authenticated API modules.
	Appeals  Registrar
	OCR      Registrar
	Accounts Registrar

	// Webhooks is mounted outside the auth middleware; the payment provider
	// authenticates by signature.
	Webhooks Registrar

	// HealthChecks run on /healthz, keyed by dependency name.
	HealthChecks map[string]HealthChecker
}

// New builds the service router.
func New(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.AccessLog(deps.Logger))

	r.Get("/healthz", healthHandler(deps.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	if deps.Webhooks != nil {
		deps.Webhooks.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		for _, m := range []Registrar{deps.Appeals, deps.OCR, deps.Accounts} {
			if m != nil {
				m.Register(r)
			}
		}
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
