package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/platform/internal/handler"
	"github.com/courtside/platform/internal/service"
)

// EntityHandler forwards admin CRUD to the upstream GraphQL API. One handler
// covers players, teams, matches and events; the entity name rides in the
// route.
type EntityHandler struct {
	admin *service.AdminService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(admin *service.AdminService) *EntityHandler {
	return &EntityHandler{admin: admin}
}

// Create handles POST /admin/{entity}.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := handler.DecodeJSON(r, &fields); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	res, err := h.admin.Create(r.Context(), chi.URLParam(r, "entity"), fields)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, map[string]any{"data": res.Data, "error": res.FriendlyError()})
}

// Update handles PATCH /admin/{entity}/{id}.
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := handler.DecodeJSON(r, &fields); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	res, err := h.admin.Update(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"), fields)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"data": res.Data, "error": res.FriendlyError()})
}

// Delete handles DELETE /admin/{entity}/{id}.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.admin.Delete(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"data": res.Data, "error": res.FriendlyError()})
}
