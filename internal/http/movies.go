package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/omdb"
	"github.com/Clark-Hu/popcorn/internal/search"
)

type movieSearchResponse struct {
	Items []domain.SearchResult `json:"items"`
}

// handleSearchMovies proxies a catalog search without touching app state.
func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("s"))
	if len(query) < search.MinQueryLength {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "s must be at least 3 characters")
		return
	}

	ctx, cancel := s.upstreamContext(r.Context())
	defer cancel()

	movies, err := s.omdb.Search(ctx, query)
	if err != nil {
		s.respondUpstreamError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movieSearchResponse{Items: movies})
}

func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing id parameter")
		return
	}

	ctx, cancel := s.upstreamContext(r.Context())
	defer cancel()

	movie, err := s.omdb.Details(ctx, id)
	if err != nil {
		s.respondUpstreamError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OMDbTimeoutSecs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.cfg.OMDbTimeoutSecs)*time.Second)
}

func (s *Server) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, omdb.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", omdb.MessageNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", omdb.MessageTransport)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		s.logger.WarnContext(r.Context(), "omdb request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", omdb.UserMessage(err))
	}
}
