package tx

import (
	"context"
	"sync"
)

// MemoryManager serializes in-memory transactions and rolls back every
// journaled write when fn fails. Nested calls join the outer transaction.
type MemoryManager struct {
	mu sync.Mutex
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{}
}

func (m *MemoryManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if JournalFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	j := &Journal{}
	if err := fn(WithJournal(ctx, j)); err != nil {
		j.Rollback()
		return err
	}
	return nil
}
