package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestPoolConfigAppliesOptions(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@db.local:5432/popcorn", Options{
		MaxConns:               8,
		MinConns:               2,
		MaxConnIdleTime:        time.Minute,
		StatementCacheCapacity: 32,
	})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 8 || cfg.MinConns != 2 || cfg.MaxConnIdleTime != time.Minute {
		t.Fatalf("pool limits not applied: max=%d min=%d idle=%s", cfg.MaxConns, cfg.MinConns, cfg.MaxConnIdleTime)
	}
	if cfg.ConnConfig.DefaultQueryExecMode != pgx.QueryExecModeCacheStatement || cfg.ConnConfig.StatementCacheCapacity != 32 {
		t.Fatalf("statement cache not applied")
	}
	if cfg.ConnConfig.Database != "popcorn" {
		t.Fatalf("database = %q", cfg.ConnConfig.Database)
	}

	cfg, err = poolConfig("postgres://u:p@db.local:5432/popcorn", Options{})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.ConnConfig.DefaultQueryExecMode != pgx.QueryExecModeExec {
		t.Fatalf("exec mode without cache = %v", cfg.ConnConfig.DefaultQueryExecMode)
	}
}

func TestPoolConfigRejectsBadURL(t *testing.T) {
	if _, err := poolConfig("postgres://%zz", Options{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no embedded migrations")
	}
}

func TestOpenSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "popcorn.db")

	st, err := OpenSQLite(ctx, path, logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if _, err := st.DB().ExecContext(ctx, `INSERT INTO kv_store (key, value, updated_at) VALUES ('watched', '[]', 0)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	var value string
	if err := reopened.DB().QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = 'watched'`).Scan(&value); err != nil {
		t.Fatalf("select: %v", err)
	}
	if value != "[]" {
		t.Fatalf("value = %q", value)
	}
}
