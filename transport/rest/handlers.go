package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

type sessions interface {
	GetOrCreate(ctx context.Context, id string) (*usecase.Session, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	logger   *slog.Logger
	sessions sessions
	page     *Page
}

func NewHandlers(logger *slog.Logger, sessions sessions, page *Page) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
		page:     page,
	}
}

func (that *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Index")

	session, ok := that.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := that.page.Render(w, session.View()); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

func (that *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	session, ok := that.session(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, session.View())
}

func (that *Handlers) SelectCell(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidCell.Error()})
		return
	}

	session, ok := that.session(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, session.SelectCell(r.Context(), cell))
}

func (that *Handlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	session, ok := that.session(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, session.ResetGame(r.Context()))
}

func (that *Handlers) ResetScores(w http.ResponseWriter, r *http.Request) {
	session, ok := that.session(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, session.ResetScores(r.Context()))
}

func (that *Handlers) session(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	log := that.logger.With("method", "session")

	session, err := that.sessions.GetOrCreate(r.Context(), handlers.SessionID(r.Context()))
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return nil, false
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return nil, false
	}

	return session, true
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", fmt.Errorf("status %d: %w", status, err))
	}
}
