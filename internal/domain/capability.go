package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ModelTier orders capability providers by rough model size.
// Bigger tiers are preferred when scores tie.
type ModelTier int

const (
	TierTiny ModelTier = iota
	TierSmall
	TierMedium
	TierLarge
	TierXL
)

func (t ModelTier) String() string {
	switch t {
	case TierTiny:
		return "tiny"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	case TierXL:
		return "xl"
	default:
		return "small"
	}
}

// Score maps the tier onto [0.2, 1.0] for quality ranking.
func (t ModelTier) Score() float64 {
	switch t {
	case TierTiny:
		return 0.2
	case TierMedium:
		return 0.6
	case TierLarge:
		return 0.8
	case TierXL:
		return 1.0
	default:
		return 0.4
	}
}

// ParseModelTier coerces free-form input into the tier domain.
// Unknown values map to TierSmall, never an error.
func ParseModelTier(s string) ModelTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny":
		return TierTiny
	case "medium":
		return TierMedium
	case "large":
		return TierLarge
	case "xl", "xlarge":
		return TierXL
	default:
		return TierSmall
	}
}

func (t ModelTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ModelTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseModelTier(s)
	return nil
}

// CapabilityRecord is one advertisement of a routable capability, owned by
// exactly one node. Records arrive as immutable snapshots from the directory;
// the routing core never mutates them.
type CapabilityRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is globally unique across the mesh. Locally seeded records use
	// "<nodeID>:<slug(label)>".
	ID string `json:"id"`

	// NodeID identifies the owning node.
	NodeID string `json:"node_id"`

	// NodeName is the owning node's human-readable name.
	NodeName string `json:"node_name"`

	// Label names the capability. Example: "assistant-local"
	Label string `json:"label"`

	// ─────────────────────────────
	// Semantic descriptors
	// ─────────────────────────────

	// Description is free text used by the keyword and fuzzy match tiers.
	Description string `json:"description"`

	// Keywords is the advertised keyword set (lowercased on ingest).
	Keywords []string `json:"keywords,omitempty"`

	// Fingerprint is a 64-bit content fingerprint of the description.
	// Zero means "absent"; the fingerprint tier skips such records.
	Fingerprint uint64 `json:"fingerprint,omitempty"`

	// ─────────────────────────────
	// Performance
	// ─────────────────────────────

	ModelTier          ModelTier `json:"model_tier"`
	EstimatedLatencyMs float64   `json:"estimated_latency_ms"`
	TokensPerSecond    float64   `json:"tokens_per_second"`

	// Hops is the network distance to the owning node. 0 = this device.
	Hops int `json:"hops"`

	// ─────────────────────────────
	// Features
	// ─────────────────────────────

	HasRag          bool     `json:"has_rag"`
	HasTools        bool     `json:"has_tools"`
	HasVision       bool     `json:"has_vision"`
	Specializations []string `json:"specializations,omitempty"`

	// ─────────────────────────────
	// Economics
	// ─────────────────────────────

	// APICostPer1kTokens in dollars. 0 = free/local.
	APICostPer1kTokens float64 `json:"api_cost_per_1k_tokens"`

	// ─────────────────────────────
	// Freshness
	// ─────────────────────────────

	Timestamp time.Time `json:"timestamp"`

	// ExpiresAt bounds the record's validity. An expired record must never
	// be selected.
	ExpiresAt time.Time `json:"expires_at"`

	// Cost is the owning node's resource state at announce time, when known.
	Cost *CostSnapshot `json:"cost_snapshot,omitempty"`
}

// IsExpired reports whether the record has outlived its freshness window.
func (r CapabilityRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsFree reports whether routing to this capability carries no API cost.
func (r CapabilityRecord) IsFree() bool {
	return r.APICostPer1kTokens <= 0
}

// IsLocal reports whether the capability lives on this device.
func (r CapabilityRecord) IsLocal() bool {
	return r.Hops == 0
}

// IsAvailable reports whether the owning node can take work at all.
// A thermally shut-down node is unavailable, not merely expensive.
func (r CapabilityRecord) IsAvailable() bool {
	return r.Cost == nil || r.Cost.IsAvailable()
}

// NodeCost returns the owning node's cost multiplier, or the neutral 1.0
// when no snapshot was announced.
func (r CapabilityRecord) NodeCost() float64 {
	if r.Cost == nil {
		return 1.0
	}
	return r.Cost.Cost()
}
