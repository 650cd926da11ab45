package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts in a map. Usernames are unique; Create
// checks and inserts under one lock.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	now      func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]models.Account),
		now:      time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	account.ID = uuid.NewString()
	account.CreatedAt = r.now().UTC()
	r.accounts[account.UserName] = *account

	return account, nil
}

func (r *InMemoryRepository) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &account, nil
}
