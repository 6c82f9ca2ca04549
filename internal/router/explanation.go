package router

import (
	"fmt"
	"strings"

	"github.com/windmesh/bearing/internal/domain"
)

const maxExplainedSpecializations = 3

// renderExplanation narrates a decision in one line: who won, how, and what
// the caller gets. Meant for humans reading API responses and logs, not for
// parsing.
func renderExplanation(m domain.Match, c *domain.RouteConstraints) string {
	rec := m.Record
	node := rec.NodeName
	if node == "" {
		node = rec.NodeID
	}

	var b strings.Builder
	if m.Method == domain.MatchFallback {
		fmt.Fprintf(&b, "no confident match; picked %q on %s as best available", rec.Label, node)
	} else {
		fmt.Fprintf(&b, "matched %q on %s via %s (%.0f%% similar)", rec.Label, node, m.Method, m.Score*100)
	}

	fmt.Fprintf(&b, "; tier %s at %.0f tok/s", rec.ModelTier, rec.TokensPerSecond)

	if rec.IsLocal() {
		b.WriteString("; local")
	} else {
		fmt.Fprintf(&b, "; %d hop(s) away", rec.Hops)
	}
	fmt.Fprintf(&b, "; ~%.0fms latency", rec.EstimatedLatencyMs)

	if features := featureList(rec); len(features) > 0 {
		fmt.Fprintf(&b, "; features: %s", strings.Join(features, ", "))
	}
	if len(rec.Specializations) > 0 {
		specs := rec.Specializations
		if len(specs) > maxExplainedSpecializations {
			specs = specs[:maxExplainedSpecializations]
		}
		fmt.Fprintf(&b, "; specializes in %s", strings.Join(specs, ", "))
	}

	if rec.IsFree() {
		b.WriteString("; free")
	} else {
		fmt.Fprintf(&b, "; $%.4f/1k tokens", rec.APICostPer1kTokens)
	}

	if parts := c.Summary(); len(parts) > 0 {
		fmt.Fprintf(&b, "; constraints: %s", strings.Join(parts, ", "))
	}
	return b.String()
}

func featureList(rec domain.CapabilityRecord) []string {
	var features []string
	if rec.HasRag {
		features = append(features, "rag")
	}
	if rec.HasTools {
		features = append(features, "tools")
	}
	if rec.HasVision {
		features = append(features, "vision")
	}
	return features
}
