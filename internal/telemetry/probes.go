package telemetry

import (
	"context"

	"github.com/windmesh/bearing/internal/domain"
)

// The sampler reads device state through these four probe interfaces. Each
// probe fails independently; a failed reading substitutes its neutral default
// below, so a sample as a whole never fails.

// BatteryProbe reads the battery charge level (percent) and charging state.
type BatteryProbe interface {
	Battery(ctx context.Context) (level int, charging bool, err error)
}

// LoadProbe reads CPU usage and memory pressure, both in [0,1].
type LoadProbe interface {
	Load(ctx context.Context) (cpu, mem float64, err error)
}

// ThermalProbe reads the thermal pressure state.
type ThermalProbe interface {
	Thermal(ctx context.Context) (domain.ThermalState, error)
}

// NetworkProbe classifies the active network link and its signal strength
// in bars (0-4, meaningful for cellular and wifi links).
type NetworkProbe interface {
	Network(ctx context.Context) (domain.NetworkType, int, error)
}

// Neutral defaults substituted when a probe is unavailable. A node we know
// nothing about is assumed wall-powered and idle, with an unclassified link.
const (
	NeutralBatteryLevel = 100
	NeutralCharging     = true
	NeutralCPUUsage     = 0.0
	NeutralMemPressure  = 0.0
	NeutralSignal       = 0
)
