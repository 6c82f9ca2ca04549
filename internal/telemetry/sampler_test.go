package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
)

type fakeBattery struct {
	level    int
	charging bool
	err      error
}

func (f fakeBattery) Battery(context.Context) (int, bool, error) {
	return f.level, f.charging, f.err
}

type fakeLoad struct {
	cpu, mem float64
	err      error
}

func (f fakeLoad) Load(context.Context) (float64, float64, error) {
	return f.cpu, f.mem, f.err
}

type fakeThermal struct {
	state domain.ThermalState
	err   error
}

func (f fakeThermal) Thermal(context.Context) (domain.ThermalState, error) {
	return f.state, f.err
}

type fakeNetwork struct {
	network domain.NetworkType
	bars    int
	err     error
}

func (f fakeNetwork) Network(context.Context) (domain.NetworkType, int, error) {
	return f.network, f.bars, f.err
}

func healthyProbes() (fakeBattery, fakeLoad, fakeThermal, fakeNetwork) {
	return fakeBattery{level: 42, charging: false},
		fakeLoad{cpu: 0.6, mem: 0.4},
		fakeThermal{state: domain.ThermalModerate},
		fakeNetwork{network: domain.NetworkCellular4G, bars: 3}
}

func TestSampleReadsAllProbes(t *testing.T) {
	b, l, th, n := healthyProbes()
	s := NewWithProbes(b, l, th, n, logger.Nop())

	snap := s.Sample(context.Background())

	if snap.BatteryLevel != 42 || snap.IsCharging {
		t.Errorf("battery = (%v, %v), want (42, false)", snap.BatteryLevel, snap.IsCharging)
	}
	if snap.CPUUsage != 0.6 || snap.MemoryPressure != 0.4 {
		t.Errorf("load = (%v, %v), want (0.6, 0.4)", snap.CPUUsage, snap.MemoryPressure)
	}
	if snap.ThermalState != domain.ThermalModerate {
		t.Errorf("thermal = %v, want moderate", snap.ThermalState)
	}
	if snap.NetworkType != domain.NetworkCellular4G || snap.SignalStrength != 3 {
		t.Errorf("network = (%v, %v), want (4g, 3)", snap.NetworkType, snap.SignalStrength)
	}
	if snap.Timestamp.IsZero() {
		t.Error("snapshot timestamp not stamped")
	}
}

func TestSampleSubstitutesNeutralDefaultsIndependently(t *testing.T) {
	probeErr := errors.New("probe down")

	tests := []struct {
		name  string
		check func(t *testing.T, snap domain.CostSnapshot)
		build func() Sampler
	}{
		{
			name: "battery failure",
			build: func() Sampler {
				_, l, th, n := healthyProbes()
				return NewWithProbes(fakeBattery{err: probeErr}, l, th, n, logger.Nop())
			},
			check: func(t *testing.T, snap domain.CostSnapshot) {
				if snap.BatteryLevel != NeutralBatteryLevel || !snap.IsCharging {
					t.Errorf("battery = (%v, %v), want neutral (100, true)", snap.BatteryLevel, snap.IsCharging)
				}
				if snap.CPUUsage != 0.6 {
					t.Errorf("cpu = %v, healthy probes must be unaffected", snap.CPUUsage)
				}
			},
		},
		{
			name: "load failure",
			build: func() Sampler {
				b, _, th, n := healthyProbes()
				return NewWithProbes(b, fakeLoad{err: probeErr}, th, n, logger.Nop())
			},
			check: func(t *testing.T, snap domain.CostSnapshot) {
				if snap.CPUUsage != NeutralCPUUsage || snap.MemoryPressure != NeutralMemPressure {
					t.Errorf("load = (%v, %v), want neutral (0, 0)", snap.CPUUsage, snap.MemoryPressure)
				}
				if snap.BatteryLevel != 42 {
					t.Errorf("battery = %v, healthy probes must be unaffected", snap.BatteryLevel)
				}
			},
		},
		{
			name: "thermal failure",
			build: func() Sampler {
				b, l, _, n := healthyProbes()
				return NewWithProbes(b, l, fakeThermal{err: probeErr}, n, logger.Nop())
			},
			check: func(t *testing.T, snap domain.CostSnapshot) {
				if snap.ThermalState != domain.ThermalNone {
					t.Errorf("thermal = %v, want neutral none", snap.ThermalState)
				}
			},
		},
		{
			name: "network failure",
			build: func() Sampler {
				b, l, th, _ := healthyProbes()
				return NewWithProbes(b, l, th, fakeNetwork{err: probeErr}, logger.Nop())
			},
			check: func(t *testing.T, snap domain.CostSnapshot) {
				if snap.NetworkType != domain.NetworkUnknown || snap.SignalStrength != NeutralSignal {
					t.Errorf("network = (%v, %v), want neutral (unknown, 0)", snap.NetworkType, snap.SignalStrength)
				}
			},
		},
		{
			name: "every probe failing still yields a snapshot",
			build: func() Sampler {
				return NewWithProbes(
					fakeBattery{err: probeErr},
					fakeLoad{err: probeErr},
					fakeThermal{err: probeErr},
					fakeNetwork{err: probeErr},
					logger.Nop(),
				)
			},
			check: func(t *testing.T, snap domain.CostSnapshot) {
				if snap.Cost() != 2.0 {
					// Neutral everything except the unknown network (2.0).
					t.Errorf("Cost() = %v, want 2.0 for the all-neutral snapshot", snap.Cost())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := tt.build().Sample(context.Background())
			tt.check(t, snap)
		})
	}
}

func TestStaticSampler(t *testing.T) {
	s := NewStatic(domain.CostSnapshot{
		BatteryLevel: 55,
		ThermalState: domain.ThermalLight,
		NetworkType:  domain.NetworkWifi,
	})

	first := s.Sample(context.Background())
	second := s.Sample(context.Background())

	if first.BatteryLevel != 55 || second.BatteryLevel != 55 {
		t.Error("static sampler should return the pinned snapshot")
	}
	if first.Timestamp.IsZero() || second.Timestamp.IsZero() {
		t.Error("static sampler should stamp each sample")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStateForTemperature(t *testing.T) {
	tests := []struct {
		celsius float64
		want    domain.ThermalState
	}{
		{35, domain.ThermalNone},
		{59.9, domain.ThermalNone},
		{60, domain.ThermalLight},
		{72, domain.ThermalModerate},
		{85, domain.ThermalSevere},
		{95, domain.ThermalCritical},
		{110, domain.ThermalEmergency},
	}

	for _, tt := range tests {
		if got := stateForTemperature(tt.celsius); got != tt.want {
			t.Errorf("stateForTemperature(%v) = %v, want %v", tt.celsius, got, tt.want)
		}
	}
}
