package telemetry

import (
	"context"
	"time"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
)

// Sampler produces point-in-time cost snapshots of the local device.
type Sampler interface {
	// Sample reads current device state. It never fails: any probe that
	// errors contributes its neutral default instead.
	Sample(ctx context.Context) domain.CostSnapshot

	// Close releases whatever the probes hold open.
	Close() error
}

// systemSampler combines the four platform probes into one snapshot.
type systemSampler struct {
	battery BatteryProbe
	load    LoadProbe
	thermal ThermalProbe
	network NetworkProbe
	logger  logger.Logger
}

// New builds a sampler backed by the production platform probes.
func New(log logger.Logger) Sampler {
	return NewWithProbes(newBatteryProbe(), newLoadProbe(), newThermalProbe(), newNetworkProbe(), log)
}

// NewWithProbes assembles a sampler from explicit probes. Tests swap in
// failing or fixed probes this way.
func NewWithProbes(b BatteryProbe, l LoadProbe, t ThermalProbe, n NetworkProbe, log logger.Logger) Sampler {
	return &systemSampler{
		battery: b,
		load:    l,
		thermal: t,
		network: n,
		logger:  log,
	}
}

func (s *systemSampler) Sample(ctx context.Context) domain.CostSnapshot {
	snap := domain.CostSnapshot{
		BatteryLevel:   NeutralBatteryLevel,
		IsCharging:     NeutralCharging,
		CPUUsage:       NeutralCPUUsage,
		MemoryPressure: NeutralMemPressure,
		ThermalState:   domain.ThermalNone,
		NetworkType:    domain.NetworkUnknown,
		SignalStrength: NeutralSignal,
		Timestamp:      time.Now(),
	}

	if level, charging, err := s.battery.Battery(ctx); err != nil {
		s.logger.Debug("battery probe unavailable, using neutral default",
			logger.Error(err))
	} else {
		snap.BatteryLevel = level
		snap.IsCharging = charging
	}

	if cpu, mem, err := s.load.Load(ctx); err != nil {
		s.logger.Debug("load probe unavailable, using neutral default",
			logger.Error(err))
	} else {
		snap.CPUUsage = cpu
		snap.MemoryPressure = mem
	}

	if thermal, err := s.thermal.Thermal(ctx); err != nil {
		s.logger.Debug("thermal probe unavailable, using neutral default",
			logger.Error(err))
	} else {
		snap.ThermalState = thermal
	}

	if network, bars, err := s.network.Network(ctx); err != nil {
		s.logger.Debug("network probe unavailable, using neutral default",
			logger.Error(err))
	} else {
		snap.NetworkType = network
		snap.SignalStrength = bars
	}

	return snap
}

func (s *systemSampler) Close() error { return nil }
