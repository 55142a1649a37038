// Package search keeps the result set of the current catalog query.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/omdb"
	"github.com/Clark-Hu/popcorn/internal/reactive"
)

// MinQueryLength is the shortest trimmed query that reaches the catalog.
const MinQueryLength = 3

// Result is the observable state of a Source.
type Result struct {
	Query     string                `json:"query"`
	Movies    []domain.SearchResult `json:"movies"`
	IsLoading bool                  `json:"isLoading"`
	Error     string                `json:"error,omitempty"`
}

// Source runs at most one catalog search at a time. Changing the query
// cancels the request of the previous query, and only the response of the
// latest query is ever applied.
type Source struct {
	client omdb.Client
	logger *slog.Logger

	base     context.Context
	stopBase context.CancelFunc

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	state  *reactive.State[Result]
	wg     sync.WaitGroup

	// afterSettle, when set, runs once a request has settled.
	afterSettle func(applied bool)
}

// NewSource creates an idle source with an empty result set.
func NewSource(client omdb.Client, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Source{
		client:   client,
		logger:   logger,
		base:     base,
		stopBase: stop,
		state:    reactive.NewState(Result{Movies: []domain.SearchResult{}}),
	}
}

// SetQuery replaces the current query. It reports whether a catalog request
// was started. Short queries clear the results and error without a request.
func (s *Source) SetQuery(query string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	trimmed := strings.TrimSpace(query)
	if s.closed || utf8.RuneCountInString(trimmed) < MinQueryLength {
		s.state.Set(Result{Query: query, Movies: []domain.SearchResult{}})
		return false
	}

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	token := uuid.NewString()

	prev := s.state.Get()
	s.state.Set(Result{Query: query, Movies: prev.Movies, IsLoading: true})

	s.logger.Debug("search: request started", slog.String("query", trimmed), slog.String("token", token))
	s.wg.Add(1)
	go s.fetch(ctx, gen, token, query, trimmed)
	return true
}

func (s *Source) fetch(ctx context.Context, gen uint64, token, query, trimmed string) {
	defer s.wg.Done()

	movies, err := s.client.Search(ctx, trimmed)
	applied := s.settle(gen, token, query, movies, err)
	if s.afterSettle != nil {
		s.afterSettle(applied)
	}
}

func (s *Source) settle(gen uint64, token, query string, movies []domain.SearchResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("search: discarded superseded response", slog.String("token", token))
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	prev := s.state.Get()
	next := Result{Query: query, Movies: prev.Movies}
	switch {
	case err == nil:
		next.Movies = movies
	case omdb.IsCanceled(err):
		next.Error = prev.Error
	case errors.Is(err, omdb.ErrNotFound):
		next.Movies = []domain.SearchResult{}
		next.Error = omdb.UserMessage(err)
	default:
		s.logger.Warn("search: request failed", slog.String("token", token), slog.String("error", err.Error()))
		next.Error = omdb.UserMessage(err)
	}
	s.state.Set(next)
	return true
}

// Snapshot returns the current state.
func (s *Source) Snapshot() Result {
	return s.state.Get()
}

// Bind registers fn to be called with every new state. Bindings run while the
// source is locked and must not call SetQuery.
func (s *Source) Bind(fn func(Result)) reactive.Unbind {
	return s.state.Bind(fn)
}

// Wait blocks until every started request has settled.
func (s *Source) Wait() {
	s.wg.Wait()
}

// Close cancels the in-flight request and waits for it to settle. Later
// queries are treated as too short.
func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if prev := s.state.Get(); prev.IsLoading {
		prev.IsLoading = false
		s.state.Set(prev)
	}
	s.mu.Unlock()

	s.stopBase()
	s.wg.Wait()
}
