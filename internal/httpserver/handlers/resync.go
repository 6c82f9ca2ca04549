package handlers

import (
	"net/http"

	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/logger"
)

// Resync triggers a manual seed reload and directory sync
func Resync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Trigger immediate seed reload
		seedTriggered := false
		if d.SeedReloadTrigger != nil {
			select {
			case d.SeedReloadTrigger <- struct{}{}:
				seedTriggered = true
				d.Logger.Info("manual seed reload triggered via endpoint",
					logger.String("remote_ip", r.RemoteAddr))
			default:
				d.Logger.Warn("seed reload already in progress",
					logger.String("remote_ip", r.RemoteAddr))
			}
		}

		// Trigger immediate directory sync
		syncTriggered := false
		if d.SyncTrigger != nil {
			select {
			case d.SyncTrigger <- struct{}{}:
				syncTriggered = true
				d.Logger.Info("manual directory sync triggered via endpoint",
					logger.String("remote_ip", r.RemoteAddr))
			default:
				d.Logger.Warn("directory sync already in progress",
					logger.String("remote_ip", r.RemoteAddr))
			}
		}

		// Determine response based on what was triggered
		if seedTriggered || syncTriggered {
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Resync triggered successfully\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		} else {
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Resync already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
