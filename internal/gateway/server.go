package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", g.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", g.handleQuery())
		r.Post("/query/stream", g.handleQueryStream())
		r.Get("/tools", g.handleListTools())
		r.Get("/sessions", g.handleListSessions())
		r.Delete("/sessions/{id}", g.handleDeleteSession())
	})

	return r
}
