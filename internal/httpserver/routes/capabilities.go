package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/httpserver/handlers"
	"github.com/windmesh/bearing/internal/httpserver/mw"
)

func init() { Register(registerCapabilities) }

func registerCapabilities(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	guarded.Get("/api/v1/capabilities", handlers.Capabilities(d))
	guarded.Get("/api/v1/capabilities/{id}", handlers.CapabilityByID(d))
}
