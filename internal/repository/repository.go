package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/popcorn/internal/persist"
	"github.com/Clark-Hu/popcorn/internal/store"
)

// ErrNotFound indicates the requested key does not exist. It is the same
// sentinel persist.Backend implementations report.
var ErrNotFound = persist.ErrNotFound

// KV is a key/value table holding one JSON document per key.
type KV = persist.Backend

// Repository aggregates all repositories of a backing store.
type Repository struct {
	KV KV
}

// New constructs a Repository backed by the provided Postgres store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{KV: &PostgresKV{pool: pool}}
}

// NewSQLite constructs a Repository backed by a SQLite store.
func NewSQLite(st *store.SQLite) *Repository {
	return NewWithDB(st.DB())
}

// NewWithDB allows constructing repositories directly from a SQLite handle.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{KV: &SQLiteKV{db: db}}
}
