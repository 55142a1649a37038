package details

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Clark-Hu/popcorn/internal/document"
	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/omdb"
)

type reply struct {
	movie domain.MovieDetail
	err   error
}

type call struct {
	id    string
	ctx   context.Context
	reply chan reply
}

type fakeClient struct {
	calls        chan *call
	ignoreCancel bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(chan *call, 16)}
}

func (f *fakeClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return nil, omdb.ErrNotFound
}

func (f *fakeClient) Details(ctx context.Context, id string) (domain.MovieDetail, error) {
	c := &call{id: id, ctx: ctx, reply: make(chan reply, 1)}
	f.calls <- c
	if f.ignoreCancel {
		r := <-c.reply
		return r.movie, r.err
	}
	select {
	case r := <-c.reply:
		return r.movie, r.err
	case <-ctx.Done():
		return domain.MovieDetail{}, ctx.Err()
	}
}

type harness struct {
	pane    *Pane
	doc     *document.Document
	client  *fakeClient
	settled chan bool
	closes  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{doc: document.New(), client: newFakeClient(), settled: make(chan bool, 16)}
	h.pane = NewPane(h.client, h.doc, slog.New(slog.NewTextHandler(io.Discard, nil)), func() {
		h.closes++
		h.pane.Close()
	})
	h.pane.afterSettle = func(applied bool) { h.settled <- applied }
	t.Cleanup(h.pane.Shutdown)
	return h
}

func (h *harness) nextCall(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-h.client.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a detail request")
		return nil
	}
}

func (h *harness) waitSettled(t *testing.T) bool {
	t.Helper()
	select {
	case applied := <-h.settled:
		return applied
	case <-time.After(2 * time.Second):
		t.Fatalf("detail request did not settle")
		return false
	}
}

func inception() domain.MovieDetail {
	return domain.MovieDetail{ImdbID: "tt1375666", Title: "Inception", Runtime: "148 min", ImdbRating: "8.8"}
}

func TestPane_OpenLoadsRecordAndTitle(t *testing.T) {
	h := newHarness(t)

	h.pane.Open("tt1375666")
	if st := h.pane.Snapshot(); !st.IsLoading || st.ID != "tt1375666" {
		t.Fatalf("snapshot while loading = %+v", st)
	}
	if h.doc.Title() != document.DefaultTitle {
		t.Fatalf("title changed before the record arrived: %q", h.doc.Title())
	}

	h.nextCall(t).reply <- reply{movie: inception()}
	h.waitSettled(t)

	st := h.pane.Snapshot()
	if st.IsLoading || st.Movie == nil || st.Movie.Title != "Inception" {
		t.Fatalf("snapshot = %+v", st)
	}
	if h.doc.Title() != "Movie | Inception" {
		t.Fatalf("title = %q", h.doc.Title())
	}

	h.pane.Close()
	if h.doc.Title() != document.DefaultTitle {
		t.Fatalf("title after close = %q", h.doc.Title())
	}
	if h.pane.Snapshot().Open() {
		t.Fatalf("pane still open after Close")
	}
}

func TestPane_EscapeClosesAndReleasesListener(t *testing.T) {
	h := newHarness(t)

	h.pane.Open("tt1375666")
	h.pane.Open("tt0133093")
	if h.doc.ListenerCount() != 1 {
		t.Fatalf("ListenerCount() = %d, want 1", h.doc.ListenerCount())
	}

	h.doc.DispatchKey("Escape")
	if h.closes != 1 {
		t.Fatalf("closes = %d, want 1", h.closes)
	}
	if h.pane.Snapshot().Open() {
		t.Fatalf("pane still open after Escape")
	}
	if h.doc.ListenerCount() != 0 {
		t.Fatalf("listener not released: %d", h.doc.ListenerCount())
	}

	h.doc.DispatchKey("Escape")
	if h.closes != 1 {
		t.Fatalf("Escape on a closed pane invoked close again")
	}
}

func TestPane_StaleResponseDiscarded(t *testing.T) {
	h := newHarness(t)
	h.client.ignoreCancel = true

	h.pane.Open("tt1375666")
	first := h.nextCall(t)
	h.pane.Open("tt0133093")
	second := h.nextCall(t)

	second.reply <- reply{movie: domain.MovieDetail{ImdbID: "tt0133093", Title: "The Matrix"}}
	if !h.waitSettled(t) {
		t.Fatalf("latest response discarded")
	}
	first.reply <- reply{movie: inception()}
	if h.waitSettled(t) {
		t.Fatalf("stale response applied")
	}

	st := h.pane.Snapshot()
	if st.ID != "tt0133093" || st.Movie == nil || st.Movie.Title != "The Matrix" {
		t.Fatalf("snapshot = %+v", st)
	}
	if h.doc.Title() != "Movie | The Matrix" {
		t.Fatalf("title = %q", h.doc.Title())
	}
}

func TestPane_ErrorSurfaces(t *testing.T) {
	h := newHarness(t)

	h.pane.Open("tt0000000")
	h.nextCall(t).reply <- reply{err: &omdb.TransportError{Status: 500}}
	h.waitSettled(t)

	st := h.pane.Snapshot()
	if st.Error != omdb.MessageTransport || st.IsLoading || st.Movie != nil {
		t.Fatalf("snapshot = %+v", st)
	}
	if h.doc.Title() != document.DefaultTitle {
		t.Fatalf("title = %q", h.doc.Title())
	}
}

func TestPane_ErrorAfterLoadedMovieRestoresTitle(t *testing.T) {
	h := newHarness(t)

	h.pane.Open("tt1375666")
	h.nextCall(t).reply <- reply{movie: inception()}
	h.waitSettled(t)
	if h.doc.Title() != "Movie | Inception" {
		t.Fatalf("title = %q", h.doc.Title())
	}

	h.pane.Open("tt0000000")
	h.nextCall(t).reply <- reply{err: &omdb.TransportError{Status: 502}}
	if !h.waitSettled(t) {
		t.Fatalf("failed response discarded")
	}

	st := h.pane.Snapshot()
	if st.ID != "tt0000000" || st.Error != omdb.MessageTransport || st.Movie != nil {
		t.Fatalf("snapshot = %+v", st)
	}
	if h.doc.Title() != document.DefaultTitle {
		t.Fatalf("title after failed fetch = %q, want %q", h.doc.Title(), document.DefaultTitle)
	}
}

func TestPane_UserRating(t *testing.T) {
	h := newHarness(t)

	if err := h.pane.SetUserRating(5); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("SetUserRating on closed pane = %v, want ErrNotOpen", err)
	}

	h.pane.Open("tt1375666")
	if err := h.pane.SetUserRating(11); !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("SetUserRating(11) = %v, want ErrInvalidRating", err)
	}
	if err := h.pane.SetUserRating(8); err != nil {
		t.Fatalf("SetUserRating(8): %v", err)
	}
	h.nextCall(t).reply <- reply{movie: inception()}
	h.waitSettled(t)
	if got := h.pane.Snapshot().UserRating; got != 8 {
		t.Fatalf("UserRating after load = %d, want 8", got)
	}

	h.pane.Open("tt0133093")
	if got := h.pane.Snapshot().UserRating; got != 0 {
		t.Fatalf("UserRating after reselect = %d, want 0", got)
	}
}
