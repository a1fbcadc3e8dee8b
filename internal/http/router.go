// Package httpapi assembles the public router: feature handlers, the middleware
// chain, health and metrics endpoints, and the admin-token section.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/admin"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/platform/middleware/requestid"
	"nameledger/pkg/platform/middleware/requesttime"
)

// Registrar mounts routes on a chi router; every feature handler satisfies
// it.
type Registrar interface {
	Register(r chi.Router)
}

// RegistrarFunc adapts a bare mount function to Registrar.
type RegistrarFunc func(r chi.Router)

func (f RegistrarFunc) Register(r chi.Router) { f(r) }

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config collects everything the router needs.
type Config struct {
	Logger     *slog.Logger
	AdminToken string

	// Public carries the v1 feature handlers; Admin the admin-token ones.
	Public []Registrar
	Admin  []Registrar

	// Checks run on /healthz; a nil map entry is skipped.
	Checks map[string]HealthChecker
}

// NewRouter builds the full route tree.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(caller.Middleware(cfg.Logger))

	for _, h := range cfg.Public {
		h.Register(r)
	}

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		for _, h := range cfg.Admin {
			h.Register(ar)
		}
	})

	r.Get("/healthz", healthHandler(cfg.Checks))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
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
