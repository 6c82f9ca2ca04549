package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/httpserver/handlers"
	"github.com/windmesh/bearing/internal/httpserver/mw"
)

func init() { Register(registerCandidates) }

func registerCandidates(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/api/v1/candidates", handlers.Candidates(d))
}
