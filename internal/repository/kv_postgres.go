package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV stores JSON documents in the kv_store table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// Load returns the document stored under key.
func (r *PostgresKV) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value::text FROM kv_store WHERE key = $1`

	var value string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return []byte(value), nil
}

// Save inserts or replaces the document stored under key. The value must be
// valid JSON.
func (r *PostgresKV) Save(ctx context.Context, key string, value []byte) error {
	const query = `
        INSERT INTO kv_store (key, value)
        VALUES ($1, $2::jsonb)
        ON CONFLICT (key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `
	if _, err := r.pool.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}
