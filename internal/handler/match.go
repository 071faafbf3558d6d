package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/platform/internal/service"
)

// MatchHandler serves schedules, results and box scores.
type MatchHandler struct {
	matches *service.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// List handles GET /matches, optionally filtered by event.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	qr, err := h.matches.List(r.Context(), r.URL.Query().Get("event"), queryInt(r, "limit", 50))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: qr.Items, Error: qr.Friendly, FromCache: qr.FromCache})
}

// BoxScore handles GET /matches/{id}/stats.
func (h *MatchHandler) BoxScore(w http.ResponseWriter, r *http.Request) {
	qr, err := h.matches.BoxScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: qr.Items, Error: qr.Friendly, FromCache: qr.FromCache})
}
