package telemetry

import (
	"context"
	"fmt"

	"github.com/distatus/battery"
)

// systemBattery reads charge state through the cross-platform battery
// library. A machine with no battery at all (desktop, server) reports the
// wall-powered neutral default rather than an error.
type systemBattery struct{}

func newBatteryProbe() BatteryProbe { return systemBattery{} }

func (systemBattery) Battery(context.Context) (int, bool, error) {
	batteries, err := battery.GetAll()
	if err != nil && len(batteries) == 0 {
		return 0, false, fmt.Errorf("battery read: %w", err)
	}

	for _, b := range batteries {
		if b == nil || b.Full <= 0 {
			continue
		}
		level := min(100, max(0, int(b.Current/b.Full*100)))
		// Full and Idle mean "on wall power, not draining" - for the cost
		// model that is the same as charging.
		charging := b.State.Raw == battery.Charging ||
			b.State.Raw == battery.Full ||
			b.State.Raw == battery.Idle
		return level, charging, nil
	}

	// No usable battery entry: wall-powered machine.
	return NeutralBatteryLevel, NeutralCharging, nil
}
