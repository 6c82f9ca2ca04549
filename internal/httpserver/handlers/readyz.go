package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/windmesh/bearing/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports whether the node can serve routing decisions: the directory
// holds records, redis answers pings and the cost publisher is running.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"directory": checkDirectory(d),
			"redis":     checkRedis(d),
			"publisher": checkPublisher(d),
		}

		ready := true
		for _, c := range components {
			if !c.OK {
				ready = false
				break
			}
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}

		respondJSON(w, status, readyzResponse{
			Ready:      ready,
			Components: components,
		})
	}
}

func checkDirectory(d deps.Deps) componentStatus {
	if d.Directory == nil {
		return componentStatus{OK: false, Error: "directory not initialized"}
	}
	count := d.Directory.Count()
	if count == 0 {
		return componentStatus{OK: false, Error: "no capabilities loaded"}
	}
	return componentStatus{
		OK:     true,
		Detail: fmt.Sprintf("%d capabilities", count),
	}
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: false, Error: "client not initialized"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkPublisher(d deps.Deps) componentStatus {
	if d.Publisher == nil {
		return componentStatus{OK: false, Error: "publisher not initialized"}
	}
	if !d.Publisher.IsRunning() {
		return componentStatus{OK: false, Error: "publisher not running"}
	}
	return componentStatus{
		OK:     true,
		Detail: fmt.Sprintf("%d publishes", d.Publisher.Publishes()),
	}
}
