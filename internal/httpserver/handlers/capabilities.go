package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/httpserver/deps"
)

type capabilitiesResponse struct {
	Count       int                       `json:"count"`
	LastUpdated time.Time                 `json:"last_updated"`
	Records     []domain.CapabilityRecord `json:"records"`
}

// Capabilities returns the full directory snapshot.
func Capabilities(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := d.Directory.GetAllCapabilities()
		respondJSON(w, http.StatusOK, capabilitiesResponse{
			Count:       len(records),
			LastUpdated: d.Directory.LastUpdated(),
			Records:     records,
		})
	}
}

// CapabilityByID returns a single record by its directory id.
func CapabilityByID(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, ok := d.Directory.GetCapability(id)
		if !ok {
			respondJSON(w, http.StatusNotFound, errorResponse{
				Reason:  "not_found",
				Message: "no capability with id " + id,
			})
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}
