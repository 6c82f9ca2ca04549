package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
)

// DefaultRecordTTL bounds a seeded record's freshness when neither the
// capability nor the node profile names one.
const DefaultRecordTTL = 90 * time.Second

// Mapper converts seed entries to domain.CapabilityRecord values, stamping
// identity, freshness and the description fingerprint.
type Mapper struct {
	nodeID     string
	nodeName   string
	defaultTTL time.Duration
	logger     logger.Logger
}

// NewMapper creates a new mapper instance. nodeID and nodeName are the
// runtime fallbacks; a seed file's node profile overrides them.
func NewMapper(nodeID, nodeName string, defaultTTL time.Duration, log logger.Logger) *Mapper {
	if defaultTTL <= 0 {
		defaultTTL = DefaultRecordTTL
	}
	return &Mapper{
		nodeID:     nodeID,
		nodeName:   nodeName,
		defaultTTL: defaultTTL,
		logger:     log,
	}
}

// MapCapabilities converts a parsed seed file to capability records.
// Invalid entries are skipped with a warning; an error means the whole file
// produced nothing usable.
func (m *Mapper) MapCapabilities(config *Config) ([]domain.CapabilityRecord, error) {
	nodeID := strings.TrimSpace(config.Node.ID)
	if nodeID == "" {
		nodeID = m.nodeID
	}
	nodeName := strings.TrimSpace(config.Node.Name)
	if nodeName == "" {
		nodeName = m.nodeName
	}
	hops := config.Node.Hops
	if hops < 0 {
		hops = 0
	}

	defaultTTL := m.defaultTTL
	if config.Node.DefaultTTL != "" {
		if d, err := time.ParseDuration(config.Node.DefaultTTL); err == nil && d > 0 {
			defaultTTL = d
		} else {
			m.logger.Warn("invalid default_ttl in seed node profile, keeping fallback",
				logger.String("default_ttl", config.Node.DefaultTTL))
		}
	}

	now := time.Now()
	records := make([]domain.CapabilityRecord, 0, len(config.Capabilities))
	seen := make(map[string]bool, len(config.Capabilities))

	for _, props := range config.Capabilities {
		rec, err := m.mapCapability(props, nodeID, nodeName, hops, defaultTTL, now)
		if err != nil {
			m.logger.Warn("skipping invalid capability entry",
				logger.String("label", props.Label),
				logger.Error(err))
			continue
		}
		if seen[rec.ID] {
			m.logger.Warn("skipping capability with duplicate id",
				logger.String("id", rec.ID))
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid capabilities found in seed file")
	}

	return records, nil
}

// NodeIdentity returns the effective node id and name for a parsed seed
// file, after profile overrides.
func (m *Mapper) NodeIdentity(config *Config) (string, string) {
	nodeID := strings.TrimSpace(config.Node.ID)
	if nodeID == "" {
		nodeID = m.nodeID
	}
	nodeName := strings.TrimSpace(config.Node.Name)
	if nodeName == "" {
		nodeName = m.nodeName
	}
	return nodeID, nodeName
}

func (m *Mapper) mapCapability(
	props CapabilityProps,
	nodeID, nodeName string,
	hops int,
	defaultTTL time.Duration,
	now time.Time,
) (domain.CapabilityRecord, error) {
	label := strings.TrimSpace(props.Label)
	if label == "" {
		return domain.CapabilityRecord{}, fmt.Errorf("capability has no label")
	}
	idSlug := slug(label)
	if idSlug == "" {
		return domain.CapabilityRecord{}, fmt.Errorf("label %q has no usable characters", label)
	}

	description := strings.TrimSpace(props.Description)

	keywords := make([]string, 0, len(props.Keywords))
	for _, k := range props.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	ttl := defaultTTL
	if props.TTL != "" {
		if d, err := time.ParseDuration(props.TTL); err == nil && d > 0 {
			ttl = d
		} else {
			m.logger.Warn("invalid ttl on capability, keeping default",
				logger.String("label", label),
				logger.String("ttl", props.TTL))
		}
	}

	rec := domain.CapabilityRecord{
		ID:                 nodeID + ":" + idSlug,
		NodeID:             nodeID,
		NodeName:           nodeName,
		Label:              label,
		Description:        description,
		Keywords:           keywords,
		Fingerprint:        domain.Fingerprint(description),
		ModelTier:          domain.ParseModelTier(props.ModelTier),
		EstimatedLatencyMs: max(0, props.EstimatedLatencyMs),
		TokensPerSecond:    max(0, props.TokensPerSecond),
		Hops:               hops,
		HasRag:             props.HasRag,
		HasTools:           props.HasTools,
		HasVision:          props.HasVision,
		Specializations:    props.Specializations,
		APICostPer1kTokens: max(0, props.APICostPer1kTokens),
		Timestamp:          now,
		ExpiresAt:          now.Add(ttl),
	}
	return rec, nil
}

// slug converts a label into its id segment: lowercased, with runs of
// non-alphanumeric runes collapsed into single dashes.
// Example: "Assistant (Local)" -> "assistant-local"
func slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
