package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/windmesh/bearing/internal/domain"
)

// costUpdate is the pub/sub envelope: subscribers need to know whose
// snapshot arrived, and the snapshot itself does not carry a node id.
type costUpdate struct {
	NodeID   string              `json:"node_id"`
	Snapshot domain.CostSnapshot `json:"snapshot"`
}

// SendCostUpdate stores the node's latest snapshot under its cost key and
// announces it on the updates channel. This is the Redis half of the cost
// sink contract the publisher feeds.
func (s *Store) SendCostUpdate(ctx context.Context, nodeID string, snap domain.CostSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cost snapshot: %w", err)
	}

	if err := s.client.Set(ctx, CostKey(nodeID), data, s.costTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cost snapshot: %w", err)
	}

	envelope, err := json.Marshal(costUpdate{NodeID: nodeID, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("failed to marshal cost update: %w", err)
	}
	if err := s.client.Publish(ctx, ChannelCostUpdates, envelope).Err(); err != nil {
		return fmt.Errorf("failed to publish cost update: %w", err)
	}

	return nil
}

// GetCostSnapshot retrieves one node's latest published snapshot.
func (s *Store) GetCostSnapshot(ctx context.Context, nodeID string) (domain.CostSnapshot, error) {
	data, err := s.client.Get(ctx, CostKey(nodeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CostSnapshot{}, fmt.Errorf("cost snapshot not found: %s", nodeID)
		}
		return domain.CostSnapshot{}, fmt.Errorf("failed to get cost snapshot: %w", err)
	}

	var snap domain.CostSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.CostSnapshot{}, fmt.Errorf("failed to unmarshal cost snapshot: %w", err)
	}

	return snap, nil
}

// GetAllCostSnapshots scans every node's published snapshot. The sync loop
// overlays these onto pulled records so routing sees costs fresher than the
// advertisement that carried them.
func (s *Store) GetAllCostSnapshots(ctx context.Context) (map[string]domain.CostSnapshot, error) {
	snaps := make(map[string]domain.CostSnapshot)

	iter := s.client.Scan(ctx, 0, KeyPrefixCost+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var snap domain.CostSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		snaps[key[len(KeyPrefixCost):]] = snap
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cost snapshots: %w", err)
	}

	return snaps, nil
}
