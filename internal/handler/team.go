package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/platform/internal/service"
)

// TeamHandler serves the team roster endpoints.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	qr, err := h.teams.List(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: qr.Items, Error: qr.Friendly, FromCache: qr.FromCache})
}

// Get handles GET /teams/{id}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": team})
}
