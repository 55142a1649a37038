package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const eventKeepAlive = 15 * time.Second

// handleEvents streams the page model as server-sent events, one event per
// state version. Slow readers skip intermediate versions.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	changed := make(chan struct{}, 1)
	unbind := s.app.Subscribe(func(uint64) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unbind()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() error {
		version := s.app.Version()
		payload, err := json.Marshal(s.app.Page())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: page\ndata: %s\n\n", version, payload); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(); err != nil {
		s.logger.DebugContext(r.Context(), "event stream closed", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(eventKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if err := send(); err != nil {
				s.logger.DebugContext(r.Context(), "event stream closed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
