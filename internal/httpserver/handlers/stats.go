package handlers

import (
	"net/http"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/logger"
)

type publisherStats struct {
	Running       bool  `json:"running"`
	Publishes     int64 `json:"publishes"`
	PublishErrors int64 `json:"publish_errors"`
}

type statsResponse struct {
	NodeID         string               `json:"node_id"`
	NodeName       string               `json:"node_name"`
	Directory      map[string]any       `json:"directory"`
	Publisher      publisherStats       `json:"publisher"`
	LocalCost      *domain.CostSnapshot `json:"local_cost,omitempty"`
	CostMultiplier float64              `json:"cost_multiplier,omitempty"`
	Routes         map[string]int64     `json:"routes,omitempty"`
}

// Stats exposes directory, publisher and routing counters in one place.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			NodeID:    d.NodeID,
			NodeName:  d.NodeName,
			Directory: d.Router.Stats(),
		}

		if d.Publisher != nil {
			resp.Publisher = publisherStats{
				Running:       d.Publisher.IsRunning(),
				Publishes:     d.Publisher.Publishes(),
				PublishErrors: d.Publisher.PublishErrors(),
			}
			if snap, ok := d.Publisher.LatestSnapshot(); ok {
				resp.LocalCost = &snap
				resp.CostMultiplier = snap.Cost()
			}
		}

		if d.Store != nil {
			counts, err := d.Store.RouteCounts(r.Context())
			if err != nil {
				d.Logger.Warn("failed to read route counters", logger.Error(err))
			} else {
				resp.Routes = counts
			}
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
