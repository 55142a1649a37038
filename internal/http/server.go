package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/popcorn/internal/app"
	"github.com/Clark-Hu/popcorn/internal/config"
	"github.com/Clark-Hu/popcorn/internal/omdb"
)

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	app      *app.App
	omdb     omdb.Client
	logger   *slog.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes. A nil
// health checker reports the service as always healthy.
func New(cfg config.Config, health HealthChecker, a *app.App, client omdb.Client, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		health:   health,
		app:      a,
		omdb:     client,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/app", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/events", s.handleEvents)
		r.Put("/query", s.handleSetQuery)
		r.Route("/selection", func(r chi.Router) {
			r.Delete("/", s.handleCloseSelection)
			r.Put("/rating", s.handleSetRating)
			r.Post("/{id}", s.handleSelect)
		})
		r.Post("/keys/{code}", s.handlePressKey)
		r.Route("/watched", func(r chi.Router) {
			r.Get("/", s.handleListWatched)
			r.Post("/", s.handleAddWatched)
			r.Delete("/{id}", s.handleDeleteWatched)
		})
		r.Get("/summary", s.handleSummary)
		r.Post("/panes/{pane}/toggle", s.handleTogglePane)
	})
	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleSearchMovies)
		r.Get("/{id}", s.handleMovieDetails)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Storage is unreachable")
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
