package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/httpserver/handlers"
)

func init() { Register(registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	// Liveness stays open so orchestrator probes always reach it.
	r.Get("/healthz", handlers.Healthz(d))
}
