package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/popcorn/internal/app"
	"github.com/Clark-Hu/popcorn/internal/config"
	httpserver "github.com/Clark-Hu/popcorn/internal/http"
	"github.com/Clark-Hu/popcorn/internal/omdb"
	"github.com/Clark-Hu/popcorn/internal/persist"
	"github.com/Clark-Hu/popcorn/internal/repository"
	"github.com/Clark-Hu/popcorn/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("popcornd exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Development() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler).With(slog.String("service", "popcornd"))
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, health, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := omdb.NewHTTPClient(cfg.OMDbURL, cfg.OMDbAPIKey, time.Duration(cfg.OMDbTimeoutSecs)*time.Second, logger)
	if err != nil {
		return fmt.Errorf("init omdb client: %w", err)
	}

	a, err := app.New(ctx, client, app.Options{
		Backend:        backend,
		ResetMalformed: cfg.ResetMalformedState,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer a.Shutdown()

	server := httpserver.New(cfg, health, a, client, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("popcornd listening", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := server.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("graceful shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})
	return g.Wait()
}

// openBackend selects the storage behind the watched list.
func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (persist.Backend, httpserver.HealthChecker, func(), error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		st, err := store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if _, err := st.Migrate(dbCtx); err != nil {
			st.Close()
			return nil, nil, nil, err
		}
		return repository.New(st).KV, st, st.Close, nil
	case config.StoreSQLite:
		st, err := store.OpenSQLite(dbCtx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := st.Close(); err != nil {
				logger.Warn("close sqlite", slog.String("error", err.Error()))
			}
		}
		return repository.NewSQLite(st).KV, st, closeFn, nil
	default:
		logger.Warn("using in-memory store; the watched list will not survive a restart")
		return persist.NewMemoryBackend(), nil, func() {}, nil
	}
}
