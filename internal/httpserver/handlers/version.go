package handlers

import (
	"net/http"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/version"
)

// Version returns the build metadata.
func Version(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, version.Map())
	}
}
