package redis

import (
	"context"
	"fmt"
	"strconv"
)

// RecordRoute bumps the per-capability routing counter. Counters are
// unbounded on purpose: they survive capability expiry so stats keep
// showing historical winners.
func (s *Store) RecordRoute(ctx context.Context, capabilityID string) error {
	if err := s.client.Incr(ctx, RouteCounterKey(capabilityID)).Err(); err != nil {
		return fmt.Errorf("failed to record route: %w", err)
	}
	return nil
}

// RouteCounts returns every capability's routing counter.
func (s *Store) RouteCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)

	iter := s.client.Scan(ctx, 0, KeyPrefixRouteCounter+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[key[len(KeyPrefixRouteCounter):]] = n
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan route counters: %w", err)
	}

	return counts, nil
}
