package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/windmesh/bearing/internal/domain"
)

// Temperature thresholds (in °C) mapping the hottest relevant sensor onto the
// thermal pressure scale. Shutdown is never inferred from a temperature: an
// OS that hot is no longer answering probes.
const (
	tempLight     = 60.0
	tempModerate  = 70.0
	tempSevere    = 80.0
	tempCritical  = 90.0
	tempEmergency = 100.0
)

// systemThermal derives thermal pressure from hardware temperature sensors.
type systemThermal struct{}

func newThermalProbe() ThermalProbe { return systemThermal{} }

func (systemThermal) Thermal(ctx context.Context) (domain.ThermalState, error) {
	stats, err := sensors.TemperaturesWithContext(ctx)
	if len(stats) == 0 {
		if err != nil {
			return domain.ThermalNone, fmt.Errorf("sensor temperatures: %w", err)
		}
		return domain.ThermalNone, fmt.Errorf("sensor temperatures: no sensors")
	}

	hottest := 0.0
	for _, stat := range stats {
		if cpuSensor(stat.SensorKey) && stat.Temperature > hottest {
			hottest = stat.Temperature
		}
	}
	if hottest == 0 {
		// No CPU-ish sensor on this platform; take the hottest of anything.
		for _, stat := range stats {
			if stat.Temperature > hottest {
				hottest = stat.Temperature
			}
		}
	}

	return stateForTemperature(hottest), nil
}

func stateForTemperature(celsius float64) domain.ThermalState {
	switch {
	case celsius >= tempEmergency:
		return domain.ThermalEmergency
	case celsius >= tempCritical:
		return domain.ThermalCritical
	case celsius >= tempSevere:
		return domain.ThermalSevere
	case celsius >= tempModerate:
		return domain.ThermalModerate
	case celsius >= tempLight:
		return domain.ThermalLight
	default:
		return domain.ThermalNone
	}
}

// cpuSensor reports whether a sensor key looks like a CPU or package
// temperature rather than a disk, ambient or battery sensor.
func cpuSensor(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"coretemp", "k10temp", "cpu", "soc", "acpitz", "x86_pkg_temp"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
