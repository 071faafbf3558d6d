package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/service"
)

// PlayerHandler serves the player roster endpoints.
type PlayerHandler struct {
	players *service.PlayerService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(players *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// List handles GET /players. `refetch=true` bypasses the cache.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	var qr service.QueryResult[domain.Player]
	var err error
	if r.URL.Query().Get("refetch") == "true" {
		qr, err = h.players.Refetch(r.Context(), limit)
	} else {
		qr, err = h.players.List(r.Context(), limit)
	}
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: qr.Items, Error: qr.Friendly, FromCache: qr.FromCache})
}

// Get handles GET /players/{id}.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": player})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
