package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagnote/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tag graph.
	r.Get("/tags", h.ListTags)
	r.Post("/tags", h.Add)
	r.Get("/tags/{tag}/members", h.Members)
	r.Get("/tags/{tag}/categories", h.Categories)

	// Note queries.
	r.Get("/tags/{tag}/notes", h.Notes)
	r.Get("/tags/{tag}/last", h.Last)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
