// Package postgres opens the shared database handle, applies the schema and
// runs transactions for the Postgres-backed stores.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"hiretrack/internal/platform/config"
	dErrors "hiretrack/pkg/domain-errors"
	"hiretrack/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

const (
	defaultTxTimeout = 5 * time.Second
	connectDeadline  = 30 * time.Second

	uniqueViolation = "23505"
)

// Open connects with the pgx stdlib driver and waits for the server to accept
// connections, backing off between attempts.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	deadline := time.Now().Add(connectDeadline)
	backoff := 500 * time.Millisecond
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if logger != nil {
			logger.WarnContext(ctx, "postgres not ready yet", "error", err, "retry_in", backoff)
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// TxManager runs functions inside a database transaction carried in the context.
type TxManager struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxManager(db *sql.DB, timeout time.Duration) *TxManager {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &TxManager{db: db, timeout: timeout}
}

// RunInTx begins a transaction, stores it in txCtx and commits when fn
// returns nil. Nested calls join the outer transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Execer is the subset of *sql.DB and *sql.Tx used by the stores.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction from ctx when there is one, else db.
func Conn(ctx context.Context, db *sql.DB) Execer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return db
}

// InTx runs fn on the transaction in ctx, or on a short-lived transaction of
// its own when the caller has none. Row locks taken by fn last until the
// owning transaction ends.
func InTx(ctx context.Context, db *sql.DB, fn func(sqlTx *sql.Tx) error) error {
	if sqlTx, ok := tx.From(ctx); ok {
		return fn(sqlTx)
	}
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()
	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}
