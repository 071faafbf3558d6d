package handler

import (
	"net/http"

	"github.com/courtside/platform/internal/service"
)

// rankedTeam decorates a leaderboard row with its formatted win rate.
type rankedTeam struct {
	Position int    `json:"position"`
	WinRate  string `json:"win_rate"`
	Team     any    `json:"team"`
}

// RankingsHandler serves the leaderboard view.
type RankingsHandler struct {
	rankings *service.RankingsService
	events   *service.EventService
}

// NewRankingsHandler creates a new RankingsHandler.
func NewRankingsHandler(rankings *service.RankingsService, events *service.EventService) *RankingsHandler {
	return &RankingsHandler{rankings: rankings, events: events}
}

// maxRankingsPages caps how far one request can grow the window.
const maxRankingsPages = 20

// Leaderboard handles GET /rankings. `pages=N` widens the window by whole
// pages; the load-more counter is the client's, not shared server state.
func (h *RankingsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("tier")
	pages := queryInt(r, "pages", 1)
	if pages > maxRankingsPages {
		pages = maxRankingsPages
	}

	qr, err := h.rankings.Leaderboard(r.Context(), tier, pages*service.DefaultRankingsPage)
	if err != nil {
		RespondError(w, err)
		return
	}

	rows := make([]rankedTeam, 0, len(qr.Items))
	for i, team := range qr.Items {
		rows = append(rows, rankedTeam{
			Position: i + 1,
			WinRate:  service.CalculateWinRate(team.Wins, team.Losses),
			Team:     team,
		})
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: rows, Error: qr.Friendly, FromCache: qr.FromCache})
}

// Events handles GET /rankings/events: the event calendar backing the view.
func (h *RankingsHandler) Events(w http.ResponseWriter, r *http.Request) {
	qr, err := h.events.List(r.Context(), queryInt(r, "limit", 25))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, listEnvelope{Data: qr.Items, Error: qr.Friendly, FromCache: qr.FromCache})
}
