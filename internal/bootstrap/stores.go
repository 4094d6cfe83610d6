// Package bootstrap assembles stores, services and the HTTP router from
// configuration. cmd/server, cmd/seed and the integration tests share it.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	appservice "hiretrack/internal/application/service"
	appstore "hiretrack/internal/application/store"
	candidateservice "hiretrack/internal/candidate/service"
	candidatestore "hiretrack/internal/candidate/store"
	identityservice "hiretrack/internal/identity/service"
	identitystore "hiretrack/internal/identity/store"
	"hiretrack/internal/importer"
	jobservice "hiretrack/internal/job/service"
	jobstore "hiretrack/internal/job/store"
	notificationservice "hiretrack/internal/notification/service"
	notificationstore "hiretrack/internal/notification/store"
	"hiretrack/internal/platform/config"
	"hiretrack/internal/platform/postgres"
	"hiretrack/pkg/platform/tx"
)

type CandidateStore interface {
	candidateservice.Store
	appservice.CandidateReader
	identityservice.CandidateChecker
	importer.CandidateStore
}

type JobStore interface {
	jobservice.Store
	appservice.JobReader
	importer.JobStore
}

type ApplicationStore interface {
	appservice.Store
	candidateservice.ApplicationRemover
	jobservice.ApplicationRemover
	importer.ApplicationStore
}

type UserStore interface {
	identityservice.UserStore
	candidateservice.UserUnlinker
	notificationservice.UserDirectory
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Stores is one backend's set of repositories plus its transaction manager.
type Stores struct {
	Candidates    CandidateStore
	Jobs          JobStore
	Applications  ApplicationStore
	Users         UserStore
	Notifications notificationservice.Store
	Tx            TxManager

	// DB is nil for the in-memory backend.
	DB *sql.DB
}

// NewInMemoryStores returns map-backed stores sharing one journaling
// transaction manager.
func NewInMemoryStores() *Stores {
	return &Stores{
		Candidates:    candidatestore.NewInMemory(),
		Jobs:          jobstore.NewInMemory(),
		Applications:  appstore.NewInMemory(),
		Users:         identitystore.NewInMemory(),
		Notifications: notificationstore.NewInMemory(),
		Tx:            tx.NewMemoryManager(),
	}
}

// NewPostgresStores returns Postgres-backed stores over db.
func NewPostgresStores(db *sql.DB, cfg config.PostgresConfig) *Stores {
	return &Stores{
		Candidates:    candidatestore.NewPostgres(db),
		Jobs:          jobstore.NewPostgres(db),
		Applications:  appstore.NewPostgres(db),
		Users:         identitystore.NewPostgres(db),
		Notifications: notificationstore.NewPostgres(db),
		Tx:            postgres.NewTxManager(db, cfg.TxTimeout),
		DB:            db,
	}
}

// OpenStores picks the backend from cfg: Postgres when a URL is set (the
// schema is applied on connect), in-memory otherwise. The returned close
// func is always safe to call.
func OpenStores(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*Stores, func(), error) {
	if cfg.URL == "" {
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return NewInMemoryStores(), func() {}, nil
	}
	db, err := postgres.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.InfoContext(ctx, "connected to postgres")
	return NewPostgresStores(db, cfg), func() { _ = db.Close() }, nil
}
