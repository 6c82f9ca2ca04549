package scheduler

import (
	"context"
	"time"

	"github.com/windmesh/bearing/internal/directory"
	"github.com/windmesh/bearing/internal/logger"
	redisstore "github.com/windmesh/bearing/internal/store/redis"
)

const (
	// DefaultSweepInterval is how often expired records are swept out.
	DefaultSweepInterval = 60 * time.Second
)

// ExpirySweeper drops capability records that outlived their freshness
// window, from the memory directory and from Redis. Redis TTLs already expire
// the record keys themselves; the sweeper keeps the directory and the id set
// honest in between.
type ExpirySweeper struct {
	store     *redisstore.Store
	directory *directory.MemoryDirectory
	logger    logger.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

// NewExpirySweeper creates a new expiry sweeper.
func NewExpirySweeper(
	store *redisstore.Store,
	dir *directory.MemoryDirectory,
	log logger.Logger,
	interval time.Duration,
) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &ExpirySweeper{
		store:     store,
		directory: dir,
		logger:    log,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep process
func (es *ExpirySweeper) Start(ctx context.Context) error {
	// Run immediately on start
	if err := es.Sweep(ctx); err != nil {
		es.logger.Warn("initial expiry sweep failed",
			logger.Error(err))
	}

	// Start periodic sweeping
	ticker := time.NewTicker(es.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := es.Sweep(ctx); err != nil {
					es.logger.Error("expiry sweep failed",
						logger.Error(err))
				}
			case <-es.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (es *ExpirySweeper) Stop() {
	close(es.stopCh)
}

// Sweep removes every expired record from the directory and Redis.
func (es *ExpirySweeper) Sweep(ctx context.Context) error {
	now := time.Now()

	// Capture the expired ids before the prune drops them.
	var expired []string
	for _, rec := range es.directory.GetAllCapabilities() {
		if rec.IsExpired(now) {
			expired = append(expired, rec.ID)
		}
	}

	pruned := es.directory.PruneExpired(now)

	// Delete from Redis store (best effort)
	if es.store != nil {
		for _, id := range expired {
			if err := es.store.DeleteCapability(ctx, id); err != nil {
				es.logger.Warn("failed to delete expired capability from redis",
					logger.String("capability_id", id),
					logger.Error(err))
			}
		}

		if removed, err := es.store.Prune(ctx); err != nil {
			es.logger.Warn("failed to prune redis capability set",
				logger.Error(err))
		} else if removed > 0 {
			es.logger.Debug("pruned orphaned ids from redis capability set",
				logger.Int("count", removed))
		}
	}

	if pruned > 0 {
		es.logger.Info("swept expired capabilities",
			logger.Int("count", pruned))
	} else {
		es.logger.Debug("no expired capabilities to sweep")
	}

	return nil
}
