// Package tx carries transaction state through context so stores can join
// the caller's transaction without extra parameters.
//
// Postgres stores look for a *sql.Tx with From. In-memory stores look for a
// Journal with JournalFrom and record an undo step for each write, which the
// in-memory transaction manager replays in reverse when the transaction fails.
package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

type journalKey struct{}

var (
	txKey  = ctxKey{}
	jrnKey = journalKey{}
)

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Journal collects undo steps for in-memory writes made inside a transaction.
type Journal struct {
	mu    sync.Mutex
	steps []func()
}

// Record appends an undo step. Safe to call on a nil Journal (no-op), so
// stores can call it unconditionally.
func (j *Journal) Record(undo func()) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.steps = append(j.steps, undo)
	j.mu.Unlock()
}

// Rollback runs recorded steps newest first and clears the journal.
func (j *Journal) Rollback() {
	j.mu.Lock()
	steps := j.steps
	j.steps = nil
	j.mu.Unlock()
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// WithJournal stores an undo journal in context.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	return context.WithValue(ctx, jrnKey, j)
}

// JournalFrom returns the journal in ctx, or nil outside a transaction.
func JournalFrom(ctx context.Context) *Journal {
	j, _ := ctx.Value(jrnKey).(*Journal)
	return j
}
