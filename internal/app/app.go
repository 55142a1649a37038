// Package app wires the search source, the detail pane and the persisted
// watched list into the root state machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Clark-Hu/popcorn/internal/details"
	"github.com/Clark-Hu/popcorn/internal/document"
	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/omdb"
	"github.com/Clark-Hu/popcorn/internal/persist"
	"github.com/Clark-Hu/popcorn/internal/reactive"
	"github.com/Clark-Hu/popcorn/internal/search"
	"github.com/Clark-Hu/popcorn/internal/view"
)

// WatchedKey is the storage key of the watched list.
const WatchedKey = "watched"

// Pane names accepted by TogglePane.
const (
	PaneResults = "results"
	PaneWatched = "watched"
)

var (
	// ErrNoSelection is returned when an operation needs a selected movie.
	ErrNoSelection = errors.New("app: no movie selected")
	// ErrNotLoaded is returned when the selected movie has not arrived yet.
	ErrNotLoaded = errors.New("app: movie details not loaded")
	// ErrAlreadyWatched is returned when the selected movie is already rated.
	ErrAlreadyWatched = errors.New("app: movie already in watched list")
	// ErrUnknownPane is returned by TogglePane for an unknown pane name.
	ErrUnknownPane = errors.New("app: unknown pane")
)

// Options configures New.
type Options struct {
	Backend        persist.Backend
	ResetMalformed bool
	Logger         *slog.Logger
}

// App is the root of the application. All operations are safe for concurrent
// use; they are serialized by a single lock.
type App struct {
	logger *slog.Logger
	doc    *document.Document
	search *search.Source
	pane   *details.Pane

	mu      sync.Mutex
	watched *persist.Value[[]domain.WatchedEntry]
	panes   view.Panes

	version *reactive.State[uint64]
	unbind  []reactive.Unbind
}

// New loads the watched list from the backend and returns an app with no
// query and no selection.
func New(ctx context.Context, client omdb.Client, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backend := opts.Backend
	if backend == nil {
		backend = persist.NewMemoryBackend()
	}

	watched, err := persist.Open(ctx, backend, WatchedKey, []domain.WatchedEntry{}, persist.Options{
		ResetMalformed: opts.ResetMalformed,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load watched list: %w", err)
	}

	a := &App{
		logger:  logger,
		doc:     document.New(),
		search:  search.NewSource(client, logger),
		watched: watched,
		panes:   view.Panes{Results: true, Watched: true},
		version: reactive.NewState(uint64(0)),
	}
	a.pane = details.NewPane(client, a.doc, logger, a.Close)

	a.unbind = append(a.unbind,
		a.search.Bind(func(search.Result) { a.bump() }),
		a.pane.Bind(func(details.State) { a.bump() }),
		a.watched.Bind(func([]domain.WatchedEntry) { a.bump() }),
	)
	return a, nil
}

func (a *App) bump() {
	a.version.Update(func(v uint64) uint64 { return v + 1 })
}

// Subscribe registers fn to be called after every state change with a
// monotonically increasing version. fn must not block.
func (a *App) Subscribe(fn func(version uint64)) reactive.Unbind {
	return a.version.Bind(fn)
}

// Version returns the current state version.
func (a *App) Version() uint64 {
	return a.version.Get()
}

// SetQuery replaces the search query. Starting a catalog request closes the
// selected movie.
func (a *App) SetQuery(query string) {
	if a.search.SetQuery(query) {
		a.Close()
	}
}

// Select toggles selection of id: selecting the open movie closes it,
// anything else opens id.
func (a *App) Select(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id == "" || a.pane.Snapshot().ID == id {
		a.pane.Close()
		return
	}
	a.pane.Open(id)
}

// Close deselects the open movie. Closing with nothing selected is a no-op.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pane.Close()
}

// Selected returns the selected identifier, or "".
func (a *App) Selected() string {
	return a.pane.Snapshot().ID
}

// PressKey delivers a key press to the document listeners.
func (a *App) PressKey(code string) {
	a.doc.DispatchKey(code)
}

// SetUserRating records the pending rating of the selected movie.
func (a *App) SetUserRating(rating int) error {
	if err := a.pane.SetUserRating(rating); err != nil {
		if errors.Is(err, details.ErrNotOpen) {
			return ErrNoSelection
		}
		return err
	}
	return nil
}

// AddWatched appends the selected movie with its pending rating to the
// watched list and closes it.
func (a *App) AddWatched(ctx context.Context) (domain.WatchedEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.pane.Snapshot()
	if !st.Open() {
		return domain.WatchedEntry{}, ErrNoSelection
	}
	if st.Movie == nil || st.IsLoading {
		return domain.WatchedEntry{}, ErrNotLoaded
	}
	if _, ok := domain.FindWatched(a.watched.Get(), st.ID); ok {
		return domain.WatchedEntry{}, ErrAlreadyWatched
	}
	entry, err := domain.NewWatchedEntry(*st.Movie, st.UserRating)
	if err != nil {
		return domain.WatchedEntry{}, err
	}
	entry.ImdbID = st.ID

	err = a.watched.Update(ctx, func(list []domain.WatchedEntry) []domain.WatchedEntry {
		return domain.AppendWatched(list, entry)
	})
	if err != nil {
		return domain.WatchedEntry{}, err
	}
	a.logger.Info("app: added watched movie", slog.String("imdb_id", entry.ImdbID), slog.Int("user_rating", entry.UserRating))
	a.pane.Close()
	return entry, nil
}

// DeleteWatched removes every entry with id from the watched list. It
// reports whether anything was removed.
func (a *App) DeleteWatched(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	before := len(a.watched.Get())
	var after int
	err := a.watched.Update(ctx, func(list []domain.WatchedEntry) []domain.WatchedEntry {
		next := domain.RemoveWatched(list, id)
		after = len(next)
		return next
	})
	if err != nil {
		return false, err
	}
	return after < before, nil
}

// Watched returns the watched list.
func (a *App) Watched() []domain.WatchedEntry {
	return a.watched.Get()
}

// Summary returns the watched-list statistics.
func (a *App) Summary() domain.Summary {
	return domain.Summarize(a.watched.Get())
}

// TogglePane opens or closes a box and returns its new state.
func (a *App) TogglePane(name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var open bool
	switch name {
	case PaneResults:
		a.panes.Results = !a.panes.Results
		open = a.panes.Results
	case PaneWatched:
		a.panes.Watched = !a.panes.Watched
		open = a.panes.Watched
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownPane, name)
	}
	a.bump()
	return open, nil
}

// Title returns the document title.
func (a *App) Title() string {
	return a.doc.Title()
}

// Page renders the current state.
func (a *App) Page() view.Page {
	a.mu.Lock()
	panes := a.panes
	a.mu.Unlock()

	return view.Render(view.Input{
		Title:    a.doc.Title(),
		Search:   a.search.Snapshot(),
		Details:  a.pane.Snapshot(),
		Watched:  a.watched.Get(),
		Panes:    panes,
		MaxStars: domain.MaxUserRating,
	})
}

// Shutdown cancels in-flight requests, releases listeners and waits for
// background work to finish.
func (a *App) Shutdown() {
	a.search.Close()
	a.pane.Shutdown()
	for _, unbind := range a.unbind {
		unbind()
	}
}
