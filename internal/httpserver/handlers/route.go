package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/router"
)

type routeRequest struct {
	Query       string                   `json:"query"`
	Fingerprint uint64                   `json:"fingerprint,omitempty"`
	Constraints *domain.RouteConstraints `json:"constraints,omitempty"`
}

type routeResponse struct {
	RequestID string `json:"request_id"`
	Fallback  bool   `json:"fallback"`
	*domain.RoutingDecision
}

// Route handles POST routing requests with an optional constraints body.
func Route(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		var req routeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			d.Logger.Debug("unreadable route request body",
				logger.String("request_id", requestID),
				logger.Error(err))
			respondJSON(w, http.StatusBadRequest, errorResponse{
				RequestID: requestID,
				Reason:    "bad_request",
				Message:   "request body is not valid JSON",
			})
			return
		}

		resolveRoute(w, r, d, requestID, req)
	}
}

// RouteQuery handles GET routing requests (?q=..., no constraints).
func RouteQuery(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		req := routeRequest{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		resolveRoute(w, r, d, requestID, req)
	}
}

func resolveRoute(w http.ResponseWriter, r *http.Request, d deps.Deps, requestID string, req routeRequest) {
	ctx := r.Context()

	d.Logger.Info("route request",
		logger.String("request_id", requestID),
		logger.String("query", req.Query))

	decision, err := d.Router.Route(ctx, req.Query, req.Fingerprint, req.Constraints)
	if err != nil {
		respondJSON(w, http.StatusNotFound, errorResponse{
			RequestID: requestID,
			Reason:    routeFailureReason(err),
			Message:   err.Error(),
		})
		return
	}

	// Count the routed capability (best effort)
	if d.Store != nil {
		if err := d.Store.RecordRoute(ctx, decision.Record.ID); err != nil {
			d.Logger.Debug("failed to record route counter",
				logger.String("capability_id", decision.Record.ID),
				logger.Error(err))
		}
	}

	d.Logger.Info("route resolved",
		logger.String("request_id", requestID),
		logger.String("capability_id", decision.Record.ID),
		logger.String("method", string(decision.Method)),
		logger.Float64("composite", decision.Breakdown.Composite))

	respondJSON(w, http.StatusOK, routeResponse{
		RequestID:       requestID,
		Fallback:        decision.IsFallback(),
		RoutingDecision: decision,
	})
}

// routeFailureReason maps routing errors to stable reason codes.
func routeFailureReason(err error) string {
	switch {
	case errors.Is(err, router.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, router.ErrNoEligible):
		return "no_eligible"
	case errors.Is(err, router.ErrNoAvailable):
		return "no_available"
	default:
		return "routing_failed"
	}
}
