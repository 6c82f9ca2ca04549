package scheduler

import (
	"context"
	"time"

	"github.com/windmesh/bearing/internal/directory"
	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
	redisstore "github.com/windmesh/bearing/internal/store/redis"
)

// snapshotSource provides the local node's most recent cost reading.
// Satisfied by the CostPublisher.
type snapshotSource interface {
	LatestSnapshot() (domain.CostSnapshot, bool)
}

// DirectorySyncer keeps the memory directory and the Redis replica in step:
// remote records flow in, local records flow out. Local records always win
// over whatever Redis holds for this node.
type DirectorySyncer struct {
	store         *redisstore.Store
	directory     *directory.MemoryDirectory
	local         snapshotSource
	localNodeID   string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewDirectorySyncer creates a new directory syncer.
func NewDirectorySyncer(
	store *redisstore.Store,
	dir *directory.MemoryDirectory,
	local snapshotSource,
	localNodeID string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *DirectorySyncer {
	return &DirectorySyncer{
		store:         store,
		directory:     dir,
		local:         local,
		localNodeID:   localNodeID,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic sync process
func (ds *DirectorySyncer) Start(ctx context.Context) error {
	// Sync immediately on start
	if err := ds.Sync(ctx); err != nil {
		ds.logger.Warn("initial directory sync failed",
			logger.Error(err))
	}

	// Start periodic sync
	ticker := time.NewTicker(ds.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ds.Sync(ctx); err != nil {
					ds.logger.Error("failed to sync directory",
						logger.Error(err))
				}
			case <-ds.manualTrigger:
				ds.logger.Info("manual directory sync triggered")
				if err := ds.Sync(ctx); err != nil {
					ds.logger.Error("failed to sync directory",
						logger.Error(err))
				}
			case <-ds.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the syncer
func (ds *DirectorySyncer) Stop() {
	close(ds.stopCh)
}

// Sync pulls the mesh's records from Redis into the memory directory and
// pushes this node's records back out.
func (ds *DirectorySyncer) Sync(ctx context.Context) error {
	ds.logger.Debug("syncing directory with redis")

	remote, err := ds.store.GetAllCapabilities(ctx)
	if err != nil {
		return err
	}

	// Overlay each record with its node's latest published cost: the cost
	// keys refresh every publish tick, the advertisements only on reload.
	costs, err := ds.store.GetAllCostSnapshots(ctx)
	if err != nil {
		ds.logger.Warn("failed to read cost snapshots, records keep their announced costs",
			logger.Error(err))
		costs = nil
	}
	for i := range remote {
		if snap, ok := costs[remote[i].NodeID]; ok {
			remote[i].Cost = &snap
		}
	}

	ds.directory.ReplaceRemote(ds.localNodeID, remote)

	pushed := ds.pushLocal(ctx)

	ds.logger.Debug("directory synced",
		logger.Int("remote_records", len(remote)),
		logger.Int("local_pushed", pushed))

	return nil
}

// pushLocal writes this node's records to Redis, stamped with the latest
// cost snapshot so peers see our advertised state and our live state
// together. Best effort: the memory directory stays authoritative.
func (ds *DirectorySyncer) pushLocal(ctx context.Context) int {
	locals := ds.directory.RecordsForNode(ds.localNodeID)
	if len(locals) == 0 {
		return 0
	}

	if ds.local != nil {
		if snap, ok := ds.local.LatestSnapshot(); ok {
			for i := range locals {
				locals[i].Cost = &snap
			}
			ds.directory.UpsertMany(locals)
		}
	}

	if err := ds.store.SaveCapabilitiesMany(ctx, locals); err != nil {
		ds.logger.Warn("failed to push local records to redis",
			logger.Error(err))
		return 0
	}
	return len(locals)
}
