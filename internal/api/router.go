package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/perthro/internal/sectionservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *sectionservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Source files and their sections.
	r.Get("/files", h.ListFiles)
	r.Get("/files/*", h.GetFile)

	// Search.
	r.Get("/search", h.Search)

	// Group aggregates.
	r.Get("/groups", h.Groups)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
