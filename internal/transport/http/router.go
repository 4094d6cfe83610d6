// Package httptransport assembles the chi router: the middleware chain, the
// public and authenticated route groups, and the ops endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hiretrack/internal/platform/metrics"
	"hiretrack/internal/platform/middleware"
	"hiretrack/pkg/platform/httputil"
)

// RouteRegistrar mounts a feature's routes on an authenticated router.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// PublicRegistrar also exposes routes that need no token.
type PublicRegistrar interface {
	RouteRegistrar
	RegisterPublic(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Identity PublicRegistrar
	Features []RouteRegistrar

	Validator middleware.JWTValidator
	Resolver  middleware.ActorResolver

	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	HealthChecks   map[string]HealthCheck

	// PublicLimit, when set, wraps the unauthenticated routes.
	PublicLimit func(http.Handler) http.Handler
}

// NewRouter wires the middleware chain and every route.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	r.Use(middleware.Timeout(deps.RequestTimeout))

	r.Get("/health", health(deps.HealthChecks, deps.Logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if deps.PublicLimit != nil {
			r.Use(deps.PublicLimit)
		}
		r.Use(middleware.ContentTypeJSON)
		if deps.Identity != nil {
			deps.Identity.RegisterPublic(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Resolver, deps.Logger))
		if deps.Identity != nil {
			deps.Identity.Register(r)
		}
		for _, f := range deps.Features {
			f.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func health(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Components = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "component", name, "error", err)
				resp.Components[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
