package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/termblog/internal/apperr"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/storage"
)

// MediaHandler serves images from the content directory. Any other file
// type is reported as missing.
type MediaHandler struct {
	store   storage.Provider
	started time.Time
}

// NewMediaHandler creates a handler reading from store.
func NewMediaHandler(store storage.Provider) *MediaHandler {
	return &MediaHandler{store: store, started: time.Now()}
}

// ServeHTTP handles GET /media/*.
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" || !catalog.IsImage(rel) {
		http.NotFound(w, r)
		return
	}
	data, err := h.store.Read(rel)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			slog.Debug("media read failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, path.Base(rel), h.started, bytes.NewReader(data))
}
