package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
)

// InMemoryRepositoryManager keeps everything in process memory. InTx
// serializes transactions with a mutex and has no rollback; the account
// flows write at most once per transaction.
type InMemoryRepositoryManager struct {
	mu       sync.Mutex
	accounts *accounts.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{accounts: accounts.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.accounts)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
