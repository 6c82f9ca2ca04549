package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/mesh"
	"github.com/windmesh/bearing/internal/telemetry"
)

const (
	// DefaultCollectInterval is the telemetry sampling cadence.
	DefaultCollectInterval = 10 * time.Second

	// DefaultPublishInterval is the broadcast cadence. Publishing slower
	// than collecting is the normal shape; the inverse works too, it just
	// re-sends the same snapshot.
	DefaultPublishInterval = 30 * time.Second
)

// CostPublisher samples the device's cost telemetry on one timer and hands
// the latest snapshot to the cost sink on another. The two cadences are
// independent: a publish tick sends whatever the most recent collect tick
// produced.
type CostPublisher struct {
	sampler telemetry.Sampler
	sink    mesh.CostSink
	nodeID  string
	logger  logger.Logger

	collectInterval time.Duration

	mu              sync.Mutex
	latest          domain.CostSnapshot
	hasSnapshot     bool
	publishInterval time.Duration

	running       atomic.Bool
	publishes     atomic.Int64
	publishErrors atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once

	// pokeCh wakes the loop to re-read publishInterval. Buffered so the
	// setter never blocks; a pending poke already covers later changes.
	pokeCh chan struct{}
}

// NewCostPublisher creates a publisher for the local node's cost snapshots.
func NewCostPublisher(
	sampler telemetry.Sampler,
	sink mesh.CostSink,
	nodeID string,
	log logger.Logger,
	collectInterval time.Duration,
	publishInterval time.Duration,
) *CostPublisher {
	if collectInterval <= 0 {
		collectInterval = DefaultCollectInterval
	}
	if publishInterval <= 0 {
		publishInterval = DefaultPublishInterval
	}

	return &CostPublisher{
		sampler:         sampler,
		sink:            sink,
		nodeID:          nodeID,
		logger:          log,
		collectInterval: collectInterval,
		publishInterval: publishInterval,
		stopCh:          make(chan struct{}),
		pokeCh:          make(chan struct{}, 1),
	}
}

// Start begins the sample and publish loops. Calling Start on a running
// publisher is a no-op.
func (cp *CostPublisher) Start(ctx context.Context) error {
	if !cp.running.CompareAndSwap(false, true) {
		return nil
	}

	// Sample and publish once immediately so the node never sits in the
	// mesh without telemetry.
	cp.collect(ctx)
	if err := cp.publish(ctx); err != nil {
		cp.logger.Warn("initial cost publish failed",
			logger.Error(err))
	}

	collectTicker := time.NewTicker(cp.collectInterval)
	publishTicker := time.NewTicker(cp.currentPublishInterval())

	go func() {
		defer collectTicker.Stop()
		defer publishTicker.Stop()
		for {
			select {
			case <-collectTicker.C:
				cp.collect(ctx)
			case <-publishTicker.C:
				if err := cp.publish(ctx); err != nil {
					cp.logger.Warn("failed to publish cost update",
						logger.Error(err))
				}
			case <-cp.pokeCh:
				d := cp.currentPublishInterval()
				publishTicker.Reset(d)
				cp.logger.Info("publish interval changed",
					logger.Duration("interval", d))
			case <-cp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts both timers and releases the sampler. Safe to call more than
// once.
func (cp *CostPublisher) Stop() {
	cp.stopOnce.Do(func() {
		close(cp.stopCh)
		cp.running.Store(false)
		if err := cp.sampler.Close(); err != nil {
			cp.logger.Warn("failed to close sampler",
				logger.Error(err))
		}
	})
}

// SetPublishInterval changes the broadcast cadence on the running loop
// without restarting it. Values <= 0 are ignored.
func (cp *CostPublisher) SetPublishInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	cp.mu.Lock()
	cp.publishInterval = d
	cp.mu.Unlock()

	select {
	case cp.pokeCh <- struct{}{}:
	default:
	}
}

// IsRunning reports whether the loops are live.
func (cp *CostPublisher) IsRunning() bool {
	return cp.running.Load()
}

// Publishes returns the number of successful cost publishes.
func (cp *CostPublisher) Publishes() int64 {
	return cp.publishes.Load()
}

// PublishErrors returns the number of failed cost publishes.
func (cp *CostPublisher) PublishErrors() int64 {
	return cp.publishErrors.Load()
}

// LatestSnapshot returns the most recent sample. ok is false before the
// first collect tick.
func (cp *CostPublisher) LatestSnapshot() (domain.CostSnapshot, bool) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.latest, cp.hasSnapshot
}

func (cp *CostPublisher) currentPublishInterval() time.Duration {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.publishInterval
}

func (cp *CostPublisher) collect(ctx context.Context) {
	snap := cp.sampler.Sample(ctx)
	cp.mu.Lock()
	cp.latest = snap
	cp.hasSnapshot = true
	cp.mu.Unlock()
}

// publish hands the latest snapshot to the sink. A failure counts and
// surfaces to the caller but never stops the loop; the next tick retries
// implicitly.
func (cp *CostPublisher) publish(ctx context.Context) error {
	snap, ok := cp.LatestSnapshot()
	if !ok {
		return nil
	}

	if err := cp.sink.SendCostUpdate(ctx, cp.nodeID, snap); err != nil {
		cp.publishErrors.Add(1)
		return fmt.Errorf("failed to send cost update: %w", err)
	}
	cp.publishes.Add(1)

	cp.logger.Debug("published cost update",
		logger.String("node_id", cp.nodeID),
		logger.Float64("cost", snap.Cost()))
	return nil
}
