package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/popcorn/internal/app"
	"github.com/Clark-Hu/popcorn/internal/domain"
)

type queryRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type ratingRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=10"`
}

type watchedListResponse struct {
	Items []domain.WatchedEntry `json:"items"`
}

type paneResponse struct {
	Pane string `json:"pane"`
	Open bool   `json:"open"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	s.app.SetQuery(req.Query)
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing id parameter")
		return
	}
	s.app.Select(id)
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handleCloseSelection(w http.ResponseWriter, r *http.Request) {
	s.app.Close()
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handlePressKey(w http.ResponseWriter, r *http.Request) {
	s.app.PressKey(chi.URLParam(r, "code"))
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handleSetRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if err := s.app.SetUserRating(req.Rating); err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.app.Page())
}

func (s *Server) handleListWatched(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, watchedListResponse{Items: s.app.Watched()})
}

func (s *Server) handleAddWatched(w http.ResponseWriter, r *http.Request) {
	entry, err := s.app.AddWatched(r.Context())
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeleteWatched(w http.ResponseWriter, r *http.Request) {
	removed, err := s.app.DeleteWatched(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	if !removed {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.Summary())
}

func (s *Server) handleTogglePane(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "pane")
	open, err := s.app.TogglePane(name)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, paneResponse{Pane: name, Open: open})
}

func (s *Server) respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNoSelection):
		s.respondError(w, http.StatusConflict, "NO_SELECTION", "No movie is selected")
	case errors.Is(err, app.ErrNotLoaded):
		s.respondError(w, http.StatusConflict, "NOT_LOADED", "Movie details are still loading")
	case errors.Is(err, app.ErrAlreadyWatched):
		s.respondError(w, http.StatusConflict, "ALREADY_WATCHED", "Movie is already in the watched list")
	case errors.Is(err, domain.ErrInvalidRating):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be between 1 and 10")
	case errors.Is(err, app.ErrUnknownPane):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.ErrorContext(r.Context(), "app operation failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update state")
	}
}
