package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*InMemoryRepositoryManager)(nil)
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgres_InTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManagerWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password_hash, created_at FROM accounts`)).
		WithArgs("alice").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (username, password_hash)`)).
		WithArgs("alice", "h").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", time.Now()))
	mock.ExpectCommit()

	err := m.InTx(context.Background(), func(ctx context.Context, repo accounts.Repository) error {
		if _, err := repo.GetByUserName(ctx, "alice"); !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		_, err := repo.Create(ctx, &models.Account{UserName: "alice", PasswordHash: "h"})
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InTx_RollsBackOnError(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManagerWithDB(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.InTx(context.Background(), func(ctx context.Context, repo accounts.Repository) error {
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Accounts(t *testing.T) {
	db, _ := newDB(t)
	m := NewPostgresRepositoryManagerWithDB(db)

	_, ok := m.Accounts().(*accounts.PostgresRepository)
	assert.True(t, ok)
}

func TestPostgres_RunMigrations(t *testing.T) {
	db, _ := newDB(t)
	m := NewPostgresRepositoryManagerWithDB(db)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	t.Run("success", func(t *testing.T) {
		gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			assert.Same(t, db, got)
			assert.Equal(t, ".", dir)
			return nil
		}
		require.NoError(t, m.RunMigrations(context.Background()))
	})

	t.Run("error", func(t *testing.T) {
		gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
			return errors.New("boom")
		}
		require.EqualError(t, m.RunMigrations(context.Background()), "boom")
	})
}

func TestInMemory_InTx(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	ctx := context.Background()

	require.NoError(t, m.RunMigrations(ctx))

	err := m.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		_, err := repo.Create(ctx, &models.Account{UserName: "alice", PasswordHash: "h"})
		return err
	})
	require.NoError(t, err)

	got, err := m.Accounts().GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)
	assert.NoError(t, m.Close())
}
