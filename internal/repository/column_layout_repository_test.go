package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
)

func newColumnLayoutRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestColumnLayoutRepositoryGet(t *testing.T) {
	db, mock, cleanup := newColumnLayoutRepoMock(t)
	defer cleanup()

	repo := NewColumnLayoutRepository(db)
	rows := sqlmock.NewRows([]string{"key", "payload", "updated_at"}).
		AddRow("columns:registration-requests:admin-1", `[{"key":"id","visible":true}]`, time.Now())
	mock.ExpectQuery("SELECT key, payload, updated_at FROM column_layouts").
		WithArgs("columns:registration-requests:admin-1").
		WillReturnRows(rows)

	raw, err := repo.Get(context.Background(), "columns:registration-requests:admin-1")
	require.NoError(t, err)
	assert.Equal(t, `[{"key":"id","visible":true}]`, raw)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnLayoutRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newColumnLayoutRepoMock(t)
	defer cleanup()

	repo := NewColumnLayoutRepository(db)
	mock.ExpectQuery("SELECT key, payload, updated_at FROM column_layouts").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrLayoutNotFound))
}

func TestColumnLayoutRepositorySetUpserts(t *testing.T) {
	db, mock, cleanup := newColumnLayoutRepoMock(t)
	defer cleanup()

	repo := NewColumnLayoutRepository(db)
	mock.ExpectExec("INSERT INTO column_layouts").
		WithArgs("columns:t:u", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Set(context.Background(), "columns:t:u", `[]`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnLayoutRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newColumnLayoutRepoMock(t)
	defer cleanup()

	repo := NewColumnLayoutRepository(db)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS column_layouts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestMemoryColumnLayoutRepository(t *testing.T) {
	repo := NewMemoryColumnLayoutRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "k")
	assert.True(t, errors.Is(err, appErrors.ErrLayoutNotFound))

	require.NoError(t, repo.Set(ctx, "k", "v1"))
	require.NoError(t, repo.Set(ctx, "k", "v2"))
	raw, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", raw)
}

func TestRedisColumnLayoutRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisColumnLayoutRepository(nil, "console:", 0, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "columns:registration-requests:u1")
	assert.ErrorIs(t, err, appErrors.ErrLayoutNotFound)
	assert.NoError(t, repo.Set(ctx, "columns:registration-requests:u1", "[]"))
	assert.Error(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
