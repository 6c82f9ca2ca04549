package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/logger"
)

type candidatesResponse struct {
	Count   int                       `json:"count"`
	Records []domain.CapabilityRecord `json:"records"`
}

// Candidates returns the live records satisfying the posted constraints,
// without picking a winner. An empty body means no constraints.
func Candidates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var constraints *domain.RouteConstraints
		if err := json.NewDecoder(r.Body).Decode(&constraints); err != nil && !errors.Is(err, io.EOF) {
			d.Logger.Debug("unreadable constraints body", logger.Error(err))
			respondJSON(w, http.StatusBadRequest, errorResponse{
				Reason:  "bad_request",
				Message: "request body is not valid JSON",
			})
			return
		}

		records := d.Router.FilterCandidates(constraints)
		respondJSON(w, http.StatusOK, candidatesResponse{
			Count:   len(records),
			Records: records,
		})
	}
}
