// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/reviewpilot/reviews-engine/internal/answer"
	"github.com/reviewpilot/reviews-engine/internal/config"
	"github.com/reviewpilot/reviews-engine/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, engine *answer.Router, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// No chi Timeout middleware here: answers stream for as long as the
	// oracle generates, bounded by the server write timeout instead.

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"reviews-engine"}`))
	})

	chatHandler := NewChatHandler(logger, engine)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/ask", chatHandler.Ask)
		})
	})

	return r
}
