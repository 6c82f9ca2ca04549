package telemetry

import (
	"context"
	"time"

	"github.com/windmesh/bearing/internal/domain"
)

// StaticSampler returns a fixed snapshot with a fresh timestamp on every
// call. It backs tests and deployments that pin their advertised cost.
type StaticSampler struct {
	snap domain.CostSnapshot
}

func NewStatic(snap domain.CostSnapshot) *StaticSampler {
	return &StaticSampler{snap: snap}
}

func (s *StaticSampler) Sample(context.Context) domain.CostSnapshot {
	snap := s.snap
	snap.Timestamp = time.Now()
	return snap
}

func (s *StaticSampler) Close() error { return nil }
