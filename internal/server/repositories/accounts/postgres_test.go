package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+accounts\s*\(username,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at$`
	selectQuery = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*created_at\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", created))

	got, err := repo.Create(context.Background(), &models.Account{UserName: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.ID)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, created, got.CreatedAt)
}

func TestPostgresRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"})

	_, err := repo.Create(context.Background(), &models.Account{UserName: "alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPostgresRepository_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{UserName: "alice", PasswordHash: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestPostgresRepository_GetByUserName(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("a-1", "alice", "hash", created))

	got, err := repo.GetByUserName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.Account{ID: "a-1", UserName: "alice", PasswordHash: "hash", CreatedAt: created}, got)
}

func TestPostgresRepository_GetByUserName_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserName(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresRepository_GetByUserName_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetByUserName(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error: db err")
}
