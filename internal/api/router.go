package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/termblog/internal/postservice"
)

// RouterConfig configures the API router.
type RouterConfig struct {
	// AuthEnabled enforces the Bearer token on admin routes.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted. Reading is
// public; admin routes sit behind the auth middleware.
func NewRouter(svc *postservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)

	// Search and tags.
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)

	// SSE endpoint.
	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))
		r.Post("/reload", h.Reload)
	})

	return r
}
