package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apphandler "hiretrack/internal/application/handler"
	appservice "hiretrack/internal/application/service"
	"hiretrack/internal/audit"
	candidatehandler "hiretrack/internal/candidate/handler"
	candidateservice "hiretrack/internal/candidate/service"
	identityhandler "hiretrack/internal/identity/handler"
	identityservice "hiretrack/internal/identity/service"
	"hiretrack/internal/importer"
	jobhandler "hiretrack/internal/job/handler"
	jobservice "hiretrack/internal/job/service"
	jwttoken "hiretrack/internal/jwt_token"
	notificationhandler "hiretrack/internal/notification/handler"
	notificationservice "hiretrack/internal/notification/service"
	"hiretrack/internal/platform/config"
	"hiretrack/internal/platform/metrics"
	ratelimitmw "hiretrack/internal/ratelimit/middleware"
	ratelimitmodels "hiretrack/internal/ratelimit/models"
	"hiretrack/internal/ratelimit/store/bucket"
	httptransport "hiretrack/internal/transport/http"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Options carries the cross-cutting collaborators. Cache is optional;
// CacheTTL must match the lifetime of the entries it writes.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Audit    AuditPublisher
	Cache    notificationservice.UnreadCache
	CacheTTL time.Duration
}

type Services struct {
	Tokens        *jwttoken.JWTService
	Identity      *identityservice.Service
	Candidates    *candidateservice.Service
	Jobs          *jobservice.Service
	Applications  *appservice.Service
	Notifications *notificationservice.Service
	Importer      *importer.Importer
}

func NewServices(st *Stores, auth config.AuthConfig, opts Options) *Services {
	tokens := jwttoken.NewJWTService(auth.JWTSigningKey, auth.Issuer)

	notifOpts := []notificationservice.Option{
		notificationservice.WithLogger(opts.Logger),
		notificationservice.WithMetrics(opts.Metrics),
	}
	if opts.Cache != nil {
		notifOpts = append(notifOpts,
			notificationservice.WithCache(opts.Cache),
			notificationservice.WithCacheTTL(opts.CacheTTL),
		)
	}
	notifications := notificationservice.New(st.Notifications, st.Users, notifOpts...)

	return &Services{
		Tokens: tokens,
		Identity: identityservice.New(st.Users, st.Candidates, tokens,
			identityservice.WithLogger(opts.Logger),
			identityservice.WithAuditPublisher(opts.Audit),
			identityservice.WithTokenTTL(auth.AccessTokenTTL),
		),
		Candidates: candidateservice.New(st.Candidates, st.Applications, st.Users, st.Tx,
			candidateservice.WithLogger(opts.Logger),
			candidateservice.WithAuditPublisher(opts.Audit),
		),
		Jobs: jobservice.New(st.Jobs, st.Applications, notifications, st.Tx,
			jobservice.WithLogger(opts.Logger),
			jobservice.WithAuditPublisher(opts.Audit),
			jobservice.WithMetrics(opts.Metrics),
		),
		Applications: appservice.New(st.Applications, st.Candidates, st.Jobs, notifications, st.Tx,
			appservice.WithLogger(opts.Logger),
			appservice.WithAuditPublisher(opts.Audit),
			appservice.WithMetrics(opts.Metrics),
		),
		Notifications: notifications,
		Importer: importer.New(st.Candidates, st.Jobs, st.Applications,
			importer.WithLogger(opts.Logger),
			importer.WithMetrics(opts.Metrics),
			importer.WithAuditPublisher(opts.Audit),
		),
	}
}

// RouterConfig holds the ops-facing router settings.
type RouterConfig struct {
	Server       config.Server
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]httptransport.HealthCheck

	// RateLimit bounds the public auth routes. A zero AuthLimit leaves them
	// unlimited. RateLimitStore defaults to a process-local window.
	RateLimit      config.RateLimitConfig
	RateLimitStore ratelimitmw.BucketStore
}

// Router builds the HTTP handler exposing every service.
func (s *Services) Router(cfg RouterConfig, opts Options) http.Handler {
	var publicLimit func(http.Handler) http.Handler
	if cfg.RateLimit.AuthLimit > 0 {
		store := cfg.RateLimitStore
		if store == nil {
			store = bucket.NewInMemoryBucketStore()
		}
		limiter := ratelimitmw.New(store, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow, opts.Logger,
			ratelimitmw.WithMetrics(opts.Metrics),
			ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
		)
		publicLimit = limiter.RateLimit(ratelimitmodels.ClassAuth)
	}

	return httptransport.NewRouter(httptransport.Dependencies{
		Identity: identityhandler.New(s.Identity, opts.Logger),
		Features: []httptransport.RouteRegistrar{
			candidatehandler.New(s.Candidates, opts.Logger),
			jobhandler.New(s.Jobs, opts.Logger),
			apphandler.New(s.Applications, opts.Logger),
			notificationhandler.New(s.Notifications, opts.Logger),
		},
		Validator:      jwttoken.NewJWTServiceAdapter(s.Tokens),
		Resolver:       s.Identity,
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
		Gatherer:       cfg.Gatherer,
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   cfg.HealthChecks,
		PublicLimit:    publicLimit,
	})
}
