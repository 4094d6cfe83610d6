// Command seed bulk-loads candidates, jobs and applications from JSON files
// and provisions the demo accounts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hiretrack/internal/audit"
	"hiretrack/internal/bootstrap"
	"hiretrack/internal/importer"
	"hiretrack/internal/platform/config"
	"hiretrack/internal/platform/logger"
	"hiretrack/pkg/requestcontext"
)

var (
	dataFlag      = flag.String("data", "data", "Directory holding candidates.json, jobs.json and applications.json")
	clearFlag     = flag.Bool("clear", false, "Delete existing candidates, jobs and applications first")
	demoUsersFlag = flag.Bool("demo-users", false, "Create the hr, manager and candidate demo accounts")
	skipDataFlag  = flag.Bool("skip-data", false, "Only create demo users")
)

func main() {
	flag.Parse()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = requestcontext.WithTime(ctx, time.Now())

	if cfg.Postgres.URL == "" {
		log.WarnContext(ctx, "DATABASE_URL not set: seeding in-memory stores that vanish on exit")
	}
	stores, closeStores, err := bootstrap.OpenStores(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer closeStores()

	services := bootstrap.NewServices(stores, cfg.Auth, bootstrap.Options{
		Logger: log,
		Audit:  audit.NewSyncPublisher(audit.NewLogSink(log)),
	})

	if !*skipDataFlag {
		report, err := services.Importer.Run(ctx, *dataFlag, *clearFlag)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "data import finished",
			"candidates", report.Candidates,
			"jobs", report.Jobs,
			"applications", report.Applications,
		)
	}

	if *demoUsersFlag {
		if _, err := importer.SeedDemoUsers(ctx, services.Identity, stores.Candidates, log); err != nil {
			return err
		}
	}
	return nil
}
