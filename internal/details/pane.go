// Package details loads and holds the record of the selected movie.
package details

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Clark-Hu/popcorn/internal/document"
	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/keyboard"
	"github.com/Clark-Hu/popcorn/internal/omdb"
	"github.com/Clark-Hu/popcorn/internal/reactive"
)

// CloseKey is the key code that closes an open pane.
const CloseKey = "Escape"

// ErrNotOpen is returned by operations that need a selected movie.
var ErrNotOpen = errors.New("details: no movie selected")

// State is the observable state of a Pane.
type State struct {
	ID         string              `json:"id"`
	Movie      *domain.MovieDetail `json:"movie,omitempty"`
	IsLoading  bool                `json:"isLoading"`
	Error      string              `json:"error,omitempty"`
	UserRating int                 `json:"userRating"`
}

// Open reports whether a movie is selected.
func (s State) Open() bool {
	return s.ID != ""
}

// Pane fetches the record of the selected identifier. Selecting a new
// identifier cancels the request of the previous one.
type Pane struct {
	client  omdb.Client
	doc     *document.Document
	binder  *keyboard.Binder
	logger  *slog.Logger
	onClose func()

	base     context.Context
	stopBase context.CancelFunc

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  *reactive.State[State]
	title  reactive.Effect
	wg     sync.WaitGroup

	// afterSettle, when set, runs once a request has settled.
	afterSettle func(applied bool)
}

// NewPane returns a closed pane. onClose is invoked when the close key is
// pressed while a movie is open and should end up calling Close. A nil
// onClose closes the pane directly.
func NewPane(client omdb.Client, doc *document.Document, logger *slog.Logger, onClose func()) *Pane {
	if logger == nil {
		logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	p := &Pane{
		client:   client,
		doc:      doc,
		binder:   keyboard.NewBinder(doc),
		logger:   logger,
		onClose:  onClose,
		base:     base,
		stopBase: stop,
		state:    reactive.NewState(State{}),
	}
	if p.onClose == nil {
		p.onClose = p.Close
	}
	return p
}

// Open selects id and starts fetching its record. The pending user rating is
// reset. An empty id closes the pane.
func (p *Pane) Open(id string) {
	if id == "" {
		p.Close()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	gen := p.gen
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel

	prev := p.state.Get()
	p.state.Set(State{ID: id, Movie: prev.Movie, IsLoading: true})
	if !p.binder.Active() {
		p.binder.Bind(CloseKey, p.onClose)
	}

	p.wg.Add(1)
	go p.fetch(ctx, gen, id)
}

func (p *Pane) fetch(ctx context.Context, gen uint64, id string) {
	defer p.wg.Done()

	movie, err := p.client.Details(ctx, id)
	applied := p.settle(gen, id, movie, err)
	if p.afterSettle != nil {
		p.afterSettle(applied)
	}
}

func (p *Pane) settle(gen uint64, id string, movie domain.MovieDetail, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		p.logger.Debug("details: discarded superseded response", slog.String("id", id))
		return false
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	prev := p.state.Get()
	next := State{ID: id, UserRating: prev.UserRating}
	switch {
	case err == nil:
		next.Movie = &movie
		title := movie.Title
		p.title.Run(func() reactive.Cleanup {
			p.doc.SetTitle("Movie | " + title)
			return func() { p.doc.SetTitle(document.DefaultTitle) }
		})
	case omdb.IsCanceled(err):
		next.Movie = prev.Movie
	default:
		p.logger.Warn("details: request failed", slog.String("id", id), slog.String("error", err.Error()))
		next.Error = omdb.UserMessage(err)
		p.title.Stop()
	}
	p.state.Set(next)
	return true
}

// SetUserRating records the rating the user is about to submit.
func (p *Pane) SetUserRating(rating int) error {
	if rating < domain.MinUserRating || rating > domain.MaxUserRating {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRating, rating)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.state.Get()
	if !st.Open() {
		return ErrNotOpen
	}
	st.UserRating = rating
	p.state.Set(st)
	return nil
}

// Close deselects the movie, cancels any request, releases the close key
// and restores the document title.
func (p *Pane) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.binder.Close()
	p.title.Stop()
	if p.state.Get().Open() {
		p.state.Set(State{})
	}
}

// Snapshot returns the current state.
func (p *Pane) Snapshot() State {
	return p.state.Get()
}

// Bind registers fn to be called with every new state. Bindings run while the
// pane is locked and must not call back into it.
func (p *Pane) Bind(fn func(State)) reactive.Unbind {
	return p.state.Bind(fn)
}

// Wait blocks until every started request has settled.
func (p *Pane) Wait() {
	p.wg.Wait()
}

// Shutdown closes the pane and waits for in-flight requests to settle.
func (p *Pane) Shutdown() {
	p.Close()
	p.stopBase()
	p.wg.Wait()
}
