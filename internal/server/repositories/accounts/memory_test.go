package accounts

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{UserName: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = repo.GetByUserName(ctx, "Alice")
	assert.ErrorIs(t, err, common.ErrorNotFound, "usernames are not case-normalized")
}

func TestInMemoryRepository_Duplicate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Account{UserName: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Account{UserName: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
}

func TestInMemoryRepository_ConcurrentCreateSameName(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.Account{UserName: "bob", PasswordHash: fmt.Sprint(i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestInMemoryRepository_CanceledContext(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, &models.Account{UserName: "alice"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetByUserName(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
