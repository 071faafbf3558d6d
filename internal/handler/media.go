package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/platform/internal/content"
	"github.com/courtside/platform/internal/domain"
)

// MediaHandler serves the file-backed media articles.
type MediaHandler struct {
	loader   *content.Loader
	compiler *content.Compiler
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(loader *content.Loader, compiler *content.Compiler) *MediaHandler {
	return &MediaHandler{loader: loader, compiler: compiler}
}

// List handles GET /media: article metadata, newest first, bodies omitted.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	posts := h.loader.GetAllPosts()
	for _, p := range posts {
		p.Content = ""
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": posts})
}

// Get handles GET /media/{slug}: one article with its body compiled to HTML.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.loader.GetPostBySlug(slug)
	if err != nil {
		RespondError(w, err)
		return
	}
	if post == nil {
		RespondError(w, domain.ErrNotFound("post", slug))
		return
	}

	html, err := h.compiler.Compile(post.Content)
	if err != nil {
		RespondError(w, domain.ErrRenderFailed("post "+slug+" failed to compile", err))
		return
	}
	post.Content = html
	RespondJSON(w, http.StatusOK, map[string]any{"data": post})
}
