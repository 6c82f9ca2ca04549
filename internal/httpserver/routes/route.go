package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/httpserver/handlers"
	"github.com/windmesh/bearing/internal/httpserver/mw"
)

func init() { Register(registerRoute) }

func registerRoute(r chi.Router, d deps.Deps) {
	limited := r.With(
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateLimitBurst,
			RefillPerIPPerSec: d.RateLimitRPS,
			TrustProxy:        d.TrustProxy,
		}),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	limited.Post("/api/v1/route", handlers.Route(d))
	limited.Get("/api/v1/route", handlers.RouteQuery(d))
}
