package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"hiretrack/internal/audit"
	"hiretrack/internal/bootstrap"
	"hiretrack/internal/notification/cache"
	"hiretrack/internal/platform/config"
	"hiretrack/internal/platform/httpserver"
	"hiretrack/internal/platform/kafka"
	"hiretrack/internal/platform/logger"
	"hiretrack/internal/platform/metrics"
	"hiretrack/internal/platform/redis"
	"hiretrack/internal/ratelimit/store/bucket"
	httptransport "hiretrack/internal/transport/http"
	"hiretrack/pkg/platform/circuit"
)

const (
	auditQueueSize  = 1024
	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies and owns the process lifecycle.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	stores, closeStores, err := bootstrap.OpenStores(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer closeStores()

	checks := map[string]httptransport.HealthCheck{}
	if stores.DB != nil {
		checks["postgres"] = stores.DB.PingContext
	}

	opts := bootstrap.Options{Logger: log, Metrics: m}
	routerCfg := bootstrap.RouterConfig{
		Server:       cfg.Server,
		Gatherer:     reg,
		HealthChecks: checks,
		RateLimit:    cfg.RateLimit,
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		// entries skipped while the breaker is open must expire before it closes
		cooldown := max(cfg.Redis.BreakerCooldown, cfg.Redis.UnreadTTL)
		opts.Cache = cache.NewRedis(redisClient,
			cache.WithTTL(cfg.Redis.UnreadTTL),
			cache.WithBreaker(circuit.New("redis-unread", circuit.WithCooldown(cooldown))),
		)
		opts.CacheTTL = cfg.Redis.UnreadTTL
		routerCfg.RateLimitStore = bucket.NewRedisBucketStore(redisClient)
		checks["redis"] = redisClient.Health
		log.InfoContext(ctx, "unread-count cache enabled")
	}

	sink, closeSink, err := auditSink(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeSink()
	queue := make(chan audit.Event, auditQueueSize)
	opts.Audit = audit.NewPublisher(queue, log)
	worker := audit.NewWorker(sink, queue, log)

	services := bootstrap.NewServices(stores, cfg.Auth, opts)
	router := services.Router(routerCfg, opts)
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.InfoContext(gctx, "starting hiretrack", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.InfoContext(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// auditSink sends audit events to Kafka when brokers are configured, and
// always to the structured log.
func auditSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Sink, func(), error) {
	logSink := audit.NewLogSink(log)
	client, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return logSink, func() {}, nil
	}
	if err := kafka.Ping(ctx, client); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.InfoContext(ctx, "audit stream enabled", "topic", cfg.AuditTopic)
	return audit.MultiSink{logSink, audit.NewKafkaSink(client, cfg.AuditTopic)}, client.Close, nil
}
