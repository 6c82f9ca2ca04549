package telemetry

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// systemLoad reads CPU usage and memory pressure via gopsutil. CPU usage is
// measured against the previous call (interval 0, non-blocking), so the very
// first sample of a fresh process reports near-zero.
type systemLoad struct{}

func newLoadProbe() LoadProbe { return systemLoad{} }

func (systemLoad) Load(ctx context.Context) (float64, float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return 0, 0, fmt.Errorf("cpu usage: no samples")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("memory pressure: %w", err)
	}

	return percents[0] / 100, vm.UsedPercent / 100, nil
}
