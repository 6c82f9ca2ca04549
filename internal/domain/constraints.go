package domain

import (
	"fmt"
	"time"
)

// RouteConstraints are the caller's hard requirements for one routing call.
// Every field is optional; an absent field imposes no restriction. Numeric
// ceilings/floors use pointers so that zero stays distinguishable from
// absent (MaxHops of 0 means "local only").
type RouteConstraints struct {
	MaxLatencyMs       *float64   `json:"max_latency_ms,omitempty"`
	MaxHops            *int       `json:"max_hops,omitempty"`
	MaxCostPer1kTokens *float64   `json:"max_cost_per_1k_tokens,omitempty"`
	MinTokensPerSecond *float64   `json:"min_tokens_per_second,omitempty"`
	RequireRag         bool       `json:"require_rag,omitempty"`
	RequireTools       bool       `json:"require_tools,omitempty"`
	RequireVision      bool       `json:"require_vision,omitempty"`
	MinTier            *ModelTier `json:"min_tier,omitempty"`
	MaxTier            *ModelTier `json:"max_tier,omitempty"`
	PreferLocal        bool       `json:"prefer_local,omitempty"`
	ExcludeNodes       []string   `json:"exclude_nodes,omitempty"`
}

// Allows reports whether the record satisfies every present constraint.
// All conditions AND together. A nil receiver allows everything.
func (c *RouteConstraints) Allows(rec CapabilityRecord) bool {
	if c == nil {
		return true
	}
	if c.MaxLatencyMs != nil && rec.EstimatedLatencyMs > *c.MaxLatencyMs {
		return false
	}
	if c.PreferLocal && rec.Hops > 0 {
		return false
	}
	if c.RequireRag && !rec.HasRag {
		return false
	}
	if c.RequireTools && !rec.HasTools {
		return false
	}
	if c.RequireVision && !rec.HasVision {
		return false
	}
	if c.MinTier != nil && rec.ModelTier < *c.MinTier {
		return false
	}
	if c.MaxTier != nil && rec.ModelTier > *c.MaxTier {
		return false
	}
	if c.MaxHops != nil && rec.Hops > *c.MaxHops {
		return false
	}
	if c.MaxCostPer1kTokens != nil && rec.APICostPer1kTokens > *c.MaxCostPer1kTokens {
		return false
	}
	if c.MinTokensPerSecond != nil && rec.TokensPerSecond < *c.MinTokensPerSecond {
		return false
	}
	for _, node := range c.ExcludeNodes {
		if node == rec.NodeID {
			return false
		}
	}
	return true
}

// FilterCapabilities drops expired records and records violating any present
// constraint, preserving relative order. Adding a constraint can only shrink
// or preserve the result, never grow it.
func FilterCapabilities(records []CapabilityRecord, c *RouteConstraints, now time.Time) []CapabilityRecord {
	out := make([]CapabilityRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsExpired(now) {
			continue
		}
		if !c.Allows(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Summary renders the active constraints for explanations and logs.
// Returns nil when no constraint is set.
func (c *RouteConstraints) Summary() []string {
	if c == nil {
		return nil
	}
	var parts []string
	if c.MaxLatencyMs != nil {
		parts = append(parts, fmt.Sprintf("max latency %.0fms", *c.MaxLatencyMs))
	}
	if c.MaxHops != nil {
		parts = append(parts, fmt.Sprintf("max %d hops", *c.MaxHops))
	}
	if c.MaxCostPer1kTokens != nil {
		parts = append(parts, fmt.Sprintf("max $%.4f/1k tokens", *c.MaxCostPer1kTokens))
	}
	if c.MinTokensPerSecond != nil {
		parts = append(parts, fmt.Sprintf("min %.0f tokens/s", *c.MinTokensPerSecond))
	}
	if c.RequireRag {
		parts = append(parts, "requires RAG")
	}
	if c.RequireTools {
		parts = append(parts, "requires tools")
	}
	if c.RequireVision {
		parts = append(parts, "requires vision")
	}
	if c.MinTier != nil {
		parts = append(parts, fmt.Sprintf("min tier %s", *c.MinTier))
	}
	if c.MaxTier != nil {
		parts = append(parts, fmt.Sprintf("max tier %s", *c.MaxTier))
	}
	if c.PreferLocal {
		parts = append(parts, "local only")
	}
	if len(c.ExcludeNodes) > 0 {
		parts = append(parts, fmt.Sprintf("%d node(s) excluded", len(c.ExcludeNodes)))
	}
	return parts
}
