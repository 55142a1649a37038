package omdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL+"/", "test-key", 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

func TestSearch_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("s"); got != "inception" {
			t.Errorf("s = %q, want inception", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Search":[{"imdbID":"tt1375666","Title":"Inception","Year":"2010","Poster":"p.jpg"}],"totalResults":"1","Response":"True"}`)
	})

	results, err := client.Search(context.Background(), "inception")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ImdbID != "tt1375666" || results[0].Title != "Inception" || results[0].Year != "2010" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSearch_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{
			name:    "not found sentinel",
			status:  http.StatusOK,
			body:    `{"Response":"False","Error":"Movie not found!"}`,
			check:   func(err error) bool { return errors.Is(err, ErrNotFound) },
			message: MessageNotFound,
		},
		{
			name:   "transport status",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(err error) bool {
				var te *TransportError
				return errors.As(err, &te) && te.Status == http.StatusInternalServerError
			},
			message: MessageTransport,
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"Search":`,
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
			message: MessageParse,
		},
		{
			name:   "missing required id",
			status: http.StatusOK,
			body:   `{"Search":[{"Title":"Nameless"}],"Response":"True"}`,
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe) && pe.Field == "Search[0].imdbID"
			},
			message: MessageParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Search(context.Background(), "query")
			if err == nil || !tt.check(err) {
				t.Fatalf("Search error = %v, unexpected kind", err)
			}
			if got := UserMessage(err); got != tt.message {
				t.Fatalf("UserMessage = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestSearch_CanceledIsNotAnError(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Search(ctx, "slow")
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if !IsCanceled(err) {
			t.Fatalf("Search error = %v, want cancellation", err)
		}
		if msg := UserMessage(err); msg != "" {
			t.Fatalf("UserMessage(canceled) = %q, want empty", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Search did not return after cancel")
	}
}

func TestDetails_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("i"); got != "tt1375666" {
			t.Errorf("i = %q, want tt1375666", got)
		}
		_, _ = io.WriteString(w, `{"Title":"Inception","Year":"2010","Released":"16 Jul 2010","Runtime":"148 min","Genre":"Action, Sci-Fi","Director":"Christopher Nolan","Actors":"Leonardo DiCaprio","Plot":"Dreams.","Poster":"p.jpg","imdbRating":"8.8","imdbID":"tt1375666","Response":"True"}`)
	})

	detail, err := client.Details(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if detail.Title != "Inception" || detail.Runtime != "148 min" || detail.Director != "Christopher Nolan" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.RuntimeMinutes() != 148 || detail.Rating() != 8.8 {
		t.Fatalf("numeric views = %d/%v", detail.RuntimeMinutes(), detail.Rating())
	}
}

func TestDetails_MissingTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"Year":"2010","Response":"True"}`)
	})

	_, err := client.Details(context.Background(), "tt0000001")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Field != "Title" {
		t.Fatalf("Details error = %v, want ParseError on Title", err)
	}
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	if _, err := NewHTTPClient("omdbapi.com", "k", time.Second, nil); err == nil {
		t.Fatalf("expected error for relative url")
	}
}
