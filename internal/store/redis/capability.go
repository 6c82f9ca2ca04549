package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/windmesh/bearing/internal/domain"
)

const (
	// MinRecordTTL floors the Redis TTL derived from a record's expiry so
	// that an about-to-expire record still lands, then promptly vanishes.
	MinRecordTTL = time.Second
	// DefaultCostTTL bounds how long a published cost snapshot outlives its
	// publisher. Overridden to 3x the publish interval at wiring time.
	DefaultCostTTL = 90 * time.Second
)

// Store handles Redis operations for capability records, cost snapshots and
// route counters. It is the directory's replica surface: every node writes
// its own records here and reads everyone else's.
type Store struct {
	client  *redis.Client
	costTTL time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:  client,
		costTTL: DefaultCostTTL,
	}
}

// SetCostTTL overrides how long published cost snapshots live.
func (s *Store) SetCostTTL(ttl time.Duration) {
	if ttl > 0 {
		s.costTTL = ttl
	}
}

// Ping reports whether the backing Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// recordTTL derives the key TTL from the record's own expiry, so Redis drops
// a record at roughly the moment the expiry invariant would reject it anyway.
func recordTTL(rec domain.CapabilityRecord, now time.Time) time.Duration {
	ttl := rec.ExpiresAt.Sub(now)
	if ttl < MinRecordTTL {
		ttl = MinRecordTTL
	}
	return ttl
}

// SaveCapability stores one record in Redis
func (s *Store) SaveCapability(ctx context.Context, rec domain.CapabilityRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal capability: %w", err)
	}

	key := CapabilityKey(rec.ID)

	// Store record data with its freshness-bound TTL
	if err := s.client.Set(ctx, key, data, recordTTL(rec, time.Now())).Err(); err != nil {
		return fmt.Errorf("failed to save capability: %w", err)
	}

	// Add to set of all capabilities
	if err := s.client.SAdd(ctx, AllCapabilitiesKey(), rec.ID).Err(); err != nil {
		return fmt.Errorf("failed to add capability to set: %w", err)
	}

	return nil
}

// GetCapability retrieves a capability record from Redis by ID
func (s *Store) GetCapability(ctx context.Context, id string) (domain.CapabilityRecord, error) {
	key := CapabilityKey(id)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CapabilityRecord{}, fmt.Errorf("capability not found: %s", id)
		}
		return domain.CapabilityRecord{}, fmt.Errorf("failed to get capability: %w", err)
	}

	var rec domain.CapabilityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CapabilityRecord{}, fmt.Errorf("failed to unmarshal capability: %w", err)
	}

	return rec, nil
}

// GetAllCapabilities retrieves every record in the id set. IDs whose record
// key already expired are pruned from the set on the way through, so the set
// heals itself on read.
func (s *Store) GetAllCapabilities(ctx context.Context) ([]domain.CapabilityRecord, error) {
	ids, err := s.client.SMembers(ctx, AllCapabilitiesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.CapabilityRecord{}, nil
	}

	recs := make([]domain.CapabilityRecord, 0, len(ids))
	var stale []any
	for _, id := range ids {
		data, err := s.client.Get(ctx, CapabilityKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			// Transient read failure: skip, do not prune
			continue
		}

		var rec domain.CapabilityRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			stale = append(stale, id)
			continue
		}
		recs = append(recs, rec)
	}

	if len(stale) > 0 {
		// Best effort; the next read heals again if this fails
		_ = s.client.SRem(ctx, AllCapabilitiesKey(), stale...).Err()
	}

	return recs, nil
}

// DeleteCapability removes a capability record from Redis
func (s *Store) DeleteCapability(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, CapabilityKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete capability: %w", err)
	}

	if err := s.client.SRem(ctx, AllCapabilitiesKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove capability from set: %w", err)
	}

	return nil
}

// SaveCapabilitiesMany stores multiple records in Redis (bulk operation)
func (s *Store) SaveCapabilitiesMany(ctx context.Context, recs []domain.CapabilityRecord) error {
	pipe := s.client.Pipeline()
	now := time.Now()

	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal capability %s: %w", rec.ID, err)
		}

		pipe.Set(ctx, CapabilityKey(rec.ID), data, recordTTL(rec, now))
		pipe.SAdd(ctx, AllCapabilitiesKey(), rec.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save capabilities: %w", err)
	}

	return nil
}

// Prune drops set entries whose record key has expired and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	ids, err := s.client.SMembers(ctx, AllCapabilitiesKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get capability IDs: %w", err)
	}

	var stale []any
	for _, id := range ids {
		n, err := s.client.Exists(ctx, CapabilityKey(id)).Result()
		if err != nil {
			continue
		}
		if n == 0 {
			stale = append(stale, id)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.client.SRem(ctx, AllCapabilitiesKey(), stale...).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune capability set: %w", err)
	}
	return len(stale), nil
}
