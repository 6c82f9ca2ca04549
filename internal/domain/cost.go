package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// ThermalState orders thermal pressure from none to shutdown.
type ThermalState int

const (
	ThermalNone ThermalState = iota
	ThermalLight
	ThermalModerate
	ThermalSevere
	ThermalCritical
	ThermalEmergency
	ThermalShutdown
)

func (t ThermalState) String() string {
	switch t {
	case ThermalLight:
		return "light"
	case ThermalModerate:
		return "moderate"
	case ThermalSevere:
		return "severe"
	case ThermalCritical:
		return "critical"
	case ThermalEmergency:
		return "emergency"
	case ThermalShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// ParseThermalState coerces free-form input into the thermal domain.
// Unknown values map to ThermalNone, never an error.
func ParseThermalState(s string) ThermalState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return ThermalLight
	case "moderate":
		return ThermalModerate
	case "severe":
		return ThermalSevere
	case "critical":
		return ThermalCritical
	case "emergency":
		return ThermalEmergency
	case "shutdown":
		return ThermalShutdown
	default:
		return ThermalNone
	}
}

func (t ThermalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ThermalState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseThermalState(s)
	return nil
}

// NetworkType classifies the active connection. The zero value is Unknown,
// which doubles as the coercion target for unreadable input.
type NetworkType int

const (
	NetworkUnknown NetworkType = iota
	NetworkNone
	NetworkWifi
	NetworkEthernet
	NetworkCellular2G
	NetworkCellular3G
	NetworkCellular4G
	NetworkCellular5G
)

func (n NetworkType) String() string {
	switch n {
	case NetworkNone:
		return "none"
	case NetworkWifi:
		return "wifi"
	case NetworkEthernet:
		return "ethernet"
	case NetworkCellular2G:
		return "2g"
	case NetworkCellular3G:
		return "3g"
	case NetworkCellular4G:
		return "4g"
	case NetworkCellular5G:
		return "5g"
	default:
		return "unknown"
	}
}

// IsCellular reports whether signal strength modifies this network's cost.
func (n NetworkType) IsCellular() bool {
	switch n {
	case NetworkCellular2G, NetworkCellular3G, NetworkCellular4G, NetworkCellular5G:
		return true
	default:
		return false
	}
}

// ParseNetworkType coerces free-form input into the network domain.
// Unknown values map to NetworkUnknown, never an error.
func ParseNetworkType(s string) NetworkType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "offline":
		return NetworkNone
	case "wifi", "wi-fi", "wlan":
		return NetworkWifi
	case "ethernet", "wired", "lan":
		return NetworkEthernet
	case "2g", "cellular2g":
		return NetworkCellular2G
	case "3g", "cellular3g":
		return NetworkCellular3G
	case "4g", "lte", "cellular4g":
		return NetworkCellular4G
	case "5g", "cellular5g":
		return NetworkCellular5G
	default:
		return NetworkUnknown
	}
}

func (n NetworkType) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *NetworkType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = ParseNetworkType(s)
	return nil
}

// DefaultBaseCost is the cost of routing to an idle, well-connected node.
const DefaultBaseCost = 1.0

// CostSnapshot is a point-in-time measurement of one node's willingness to
// take work. Snapshots are immutable once constructed; the derived cost is
// recomputed on demand, never stored.
type CostSnapshot struct {
	BatteryLevel   int          `json:"battery_level"` // percent, 0-100
	IsCharging     bool         `json:"is_charging"`
	CPUUsage       float64      `json:"cpu_usage"`       // 0-1
	MemoryPressure float64      `json:"memory_pressure"` // 0-1
	ThermalState   ThermalState `json:"thermal_state"`
	NetworkType    NetworkType  `json:"network_type"`
	SignalStrength int          `json:"signal_strength"` // bars, 0-4, cellular only
	Timestamp      time.Time    `json:"timestamp"`
}

// IsAvailable reports whether the node can take work at all.
func (s CostSnapshot) IsAvailable() bool {
	return s.ThermalState != ThermalShutdown
}

// Cost derives the node's cost multiplier from the snapshot.
func (s CostSnapshot) Cost() float64 {
	return s.CostWithBase(DefaultBaseCost)
}

// CostWithBase multiplies the four factor multipliers onto base. The result
// is always > 0; a thermally shut-down node costs +Inf and sinks to the
// bottom of every ranking. Inputs are coerced into their domains first, so
// no combination of readings can fail.
func (s CostSnapshot) CostWithBase(base float64) float64 {
	if base <= 0 {
		base = DefaultBaseCost
	}
	return base *
		s.batteryMultiplier() *
		s.loadMultiplier() *
		s.networkMultiplier() *
		s.thermalMultiplier()
}

func (s CostSnapshot) batteryMultiplier() float64 {
	if s.IsCharging {
		return 1.0
	}
	level := clampInt(s.BatteryLevel, 0, 100)
	switch {
	case level >= 80:
		return 1.0
	case level >= 50:
		return 1.2
	case level >= 30:
		return 1.5
	case level >= 15:
		return 2.5
	default:
		return 5.0
	}
}

func (s CostSnapshot) loadMultiplier() float64 {
	load := (clamp01(s.CPUUsage) + clamp01(s.MemoryPressure)) / 2
	switch {
	case load < 0.3:
		return 1.0
	case load < 0.5:
		return 1.2
	case load < 0.7:
		return 1.5
	case load < 0.9:
		return 2.0
	default:
		return 3.0
	}
}

func (s CostSnapshot) networkMultiplier() float64 {
	var base float64
	switch s.NetworkType {
	case NetworkEthernet:
		base = 0.8
	case NetworkWifi:
		base = 1.0
	case NetworkCellular5G:
		base = 1.3
	case NetworkCellular4G:
		base = 1.5
	case NetworkCellular3G:
		base = 2.5
	case NetworkCellular2G:
		base = 5.0
	case NetworkNone:
		base = 10.0
	default:
		base = 2.0
	}
	if s.NetworkType.IsCellular() {
		base *= signalModifier(clampInt(s.SignalStrength, 0, 4))
	}
	return base
}

func signalModifier(bars int) float64 {
	switch bars {
	case 4:
		return 1.0
	case 3:
		return 1.1
	case 2:
		return 1.3
	case 1:
		return 1.6
	default:
		return 2.0
	}
}

func (s CostSnapshot) thermalMultiplier() float64 {
	switch s.ThermalState {
	case ThermalLight:
		return 1.2
	case ThermalModerate:
		return 1.8
	case ThermalSevere:
		return 3.0
	case ThermalCritical:
		return 10.0
	case ThermalEmergency:
		return 100.0
	case ThermalShutdown:
		return math.Inf(1)
	default:
		return 1.0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
