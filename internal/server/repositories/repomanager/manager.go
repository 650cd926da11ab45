// Package repomanager vends the credential store in the configured backend
// (PostgreSQL or in-memory) and runs schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
)

// RepositoryManager owns the storage backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error

	// Accounts returns a repository outside of any transaction.
	Accounts() accounts.Repository

	// InTx runs fn with a repository bound to a single transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error

	Close() error
}
