package mesh

import (
	"context"
	"errors"

	"github.com/windmesh/bearing/internal/domain"
)

// CostSink receives a node's freshly sampled cost snapshot. The Redis
// store and the MQTT bridge both implement it.
type CostSink interface {
	SendCostUpdate(ctx context.Context, nodeID string, snap domain.CostSnapshot) error
}

// FanOut forwards each update to every sink. A failing sink does not stop
// delivery to the remaining ones; all failures are reported together.
type FanOut struct {
	sinks []CostSink
}

func NewFanOut(sinks ...CostSink) *FanOut {
	return &FanOut{sinks: sinks}
}

func (f *FanOut) SendCostUpdate(ctx context.Context, nodeID string, snap domain.CostSnapshot) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.SendCostUpdate(ctx, nodeID, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
