package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/windmesh/bearing/internal/domain"
)

// systemNetwork classifies the active link from sysfs and procfs. The
// interface carrying the default route wins; without one, the first non-lo
// interface that is up does. Wireless link quality maps onto 0-4 bars.
type systemNetwork struct {
	sysNet       string
	procRoute    string
	procWireless string
}

func newNetworkProbe() NetworkProbe {
	return &systemNetwork{
		sysNet:       "/sys/class/net",
		procRoute:    "/proc/net/route",
		procWireless: "/proc/net/wireless",
	}
}

func (p *systemNetwork) Network(context.Context) (domain.NetworkType, int, error) {
	iface := p.defaultRouteInterface()
	if iface == "" {
		up, err := p.firstUpInterface()
		if err != nil {
			return domain.NetworkUnknown, 0, err
		}
		iface = up
	}
	if iface == "" {
		return domain.NetworkNone, 0, nil
	}

	switch {
	case p.isWireless(iface):
		return domain.NetworkWifi, p.wifiBars(iface), nil
	case strings.HasPrefix(iface, "wwan"):
		// Mobile broadband. sysfs exposes neither generation nor signal for
		// wwan links, so assume mid-range LTE.
		return domain.NetworkCellular4G, 2, nil
	default:
		return domain.NetworkEthernet, 0, nil
	}
}

// defaultRouteInterface returns the interface of the 0.0.0.0/0 route, or ""
// when the routing table is unreadable or holds no default route.
func (p *systemNetwork) defaultRouteInterface() string {
	data, err := os.ReadFile(p.procRoute)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[1] == "00000000" {
			return fields[0]
		}
	}
	return ""
}

// firstUpInterface scans sysfs for the first non-loopback interface whose
// operstate is up.
func (p *systemNetwork) firstUpInterface() (string, error) {
	entries, err := os.ReadDir(p.sysNet)
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "lo" {
			continue
		}
		state, err := os.ReadFile(filepath.Join(p.sysNet, name, "operstate"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(state)) == "up" {
			return name, nil
		}
	}
	return "", nil
}

func (p *systemNetwork) isWireless(iface string) bool {
	_, err := os.Stat(filepath.Join(p.sysNet, iface, "wireless"))
	return err == nil
}

// wifiBars converts the interface's link quality (0-70 on cfg80211 drivers)
// into 0-4 bars. An unreadable quality reports full bars: a link good enough
// to carry the default route should not be penalized for a parsing gap.
func (p *systemNetwork) wifiBars(iface string) int {
	data, err := os.ReadFile(p.procWireless)
	if err != nil {
		return 4
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.HasPrefix(fields[0], iface+":") {
			continue
		}
		quality, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 4
		}
		switch {
		case quality >= 56: // 80% of 70
			return 4
		case quality >= 42:
			return 3
		case quality >= 28:
			return 2
		case quality >= 14:
			return 1
		default:
			return 0
		}
	}
	return 4
}
