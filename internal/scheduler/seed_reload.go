package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/windmesh/bearing/internal/directory"
	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/sources/seed"
	redisstore "github.com/windmesh/bearing/internal/store/redis"
)

// SeedReloader handles periodic reloading of the capability seed file
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	store         *redisstore.Store
	directory     *directory.MemoryDirectory
	watcher       *seed.Watcher
	watchCh       <-chan struct{}
	localNodeID   string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a new seed reloader. watcher may be nil to
// disable file-change reloads.
func NewSeedReloader(
	loader *seed.Loader,
	mapper *seed.Mapper,
	store *redisstore.Store,
	dir *directory.MemoryDirectory,
	watcher *seed.Watcher,
	localNodeID string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	// A nil watch channel never fires in the select below.
	var watchCh <-chan struct{}
	if watcher != nil {
		watchCh = watcher.Events()
	}

	return &SeedReloader{
		loader:        loader,
		mapper:        mapper,
		store:         store,
		directory:     dir,
		watcher:       watcher,
		watchCh:       watchCh,
		localNodeID:   localNodeID,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (sr *SeedReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed",
						logger.Error(err))
				}
			case <-sr.watchCh:
				sr.logger.Info("seed file changed on disk")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and its file watcher
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
	if sr.watcher != nil {
		if err := sr.watcher.Close(); err != nil {
			sr.logger.Warn("failed to close seed watcher",
				logger.Error(err))
		}
	}
}

// Reload loads the seed file and refreshes this node's capability records,
// re-stamping their freshness window.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading capability seed")

	config, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	// Node identity is fixed at startup. A mid-run id edit in the seed
	// file takes effect on restart, never on reload.
	if id, _ := sr.mapper.NodeIdentity(config); id != sr.localNodeID {
		sr.logger.Warn("seed node id changed, restart required for it to take effect",
			logger.String("active", sr.localNodeID),
			logger.String("seed", id))
	}
	config.Node.ID = sr.localNodeID

	newRecords, err := sr.mapper.MapCapabilities(config)
	if err != nil {
		return fmt.Errorf("failed to map capabilities: %w", err)
	}

	sr.logger.Info("loaded capabilities from seed",
		logger.Int("count", len(newRecords)))

	// Find local records that vanished from the seed file
	existing := sr.directory.RecordsForNode(sr.localNodeID)

	newIDs := make(map[string]bool, len(newRecords))
	for _, rec := range newRecords {
		newIDs[rec.ID] = true
	}

	var removed []string
	for _, rec := range existing {
		if !newIDs[rec.ID] {
			removed = append(removed, rec.ID)
		}
	}

	if len(removed) > 0 {
		sr.logger.Info("removing capabilities no longer in seed",
			logger.Int("count", len(removed)))
	}

	// Update memory directory
	for _, id := range removed {
		sr.directory.Remove(id)
	}
	sr.directory.UpsertMany(newRecords)

	// Update Redis store (best effort)
	if sr.store != nil {
		for _, id := range removed {
			if err := sr.store.DeleteCapability(ctx, id); err != nil {
				sr.logger.Warn("failed to delete removed capability from redis",
					logger.String("capability_id", id),
					logger.Error(err))
			}
		}

		if err := sr.store.SaveCapabilitiesMany(ctx, newRecords); err != nil {
			sr.logger.Warn("failed to save capabilities to redis",
				logger.Error(err))
			// Don't fail - memory directory is the primary source
		} else {
			sr.logger.Info("capabilities saved to redis")
		}
	}

	return nil
}
