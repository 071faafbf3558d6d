package handler

import (
	"net/http"

	"github.com/courtside/platform/internal/service"
)

// SearchHandler serves fuzzy roster search.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /search?q=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	hits, err := h.search.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit", 20))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": hits})
}
