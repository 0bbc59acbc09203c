package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
)

const columnLayoutSchema = `CREATE TABLE IF NOT EXISTS column_layouts (
    key        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

type columnLayoutRow struct {
	Key       string    `db:"key"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ColumnLayoutRepository persists column layouts in PostgreSQL, one row per slot.
type ColumnLayoutRepository struct {
	db *sqlx.DB
}

// NewColumnLayoutRepository constructs the repository.
func NewColumnLayoutRepository(db *sqlx.DB) *ColumnLayoutRepository {
	return &ColumnLayoutRepository{db: db}
}

// EnsureSchema creates the backing table when missing.
func (r *ColumnLayoutRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, columnLayoutSchema); err != nil {
		return fmt.Errorf("create column_layouts: %w", err)
	}
	return nil
}

// Get fetches the payload stored under key.
func (r *ColumnLayoutRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT key, payload, updated_at FROM column_layouts WHERE key = $1`
	var row columnLayoutRow
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrLayoutNotFound
		}
		return "", fmt.Errorf("get column layout: %w", err)
	}
	return row.Payload, nil
}

// Set upserts the payload under key, last write wins.
func (r *ColumnLayoutRepository) Set(ctx context.Context, key, raw string) error {
	const query = `INSERT INTO column_layouts (key, payload, updated_at)
VALUES (:key, :payload, :updated_at)
ON CONFLICT (key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	row := columnLayoutRow{Key: key, Payload: raw, UpdatedAt: time.Now().UTC()}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert column layout: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (r *ColumnLayoutRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
