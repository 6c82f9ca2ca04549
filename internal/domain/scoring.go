package domain

import "math"

const (
	// Composite weights. They sum to 1.0 so the composite stays a convex
	// combination of the five sub-scores.
	WeightSemantic = 0.40
	WeightLatency  = 0.25
	WeightFeature  = 0.20
	WeightHop      = 0.10
	WeightCost     = 0.05

	// DefaultLatencyCeilingMs normalizes the latency sub-score when the
	// caller set no latency constraint.
	DefaultLatencyCeilingMs = 2000.0

	// referenceCostPer1k anchors the cost sub-score: $0.01/1k tokens and
	// above scores 0, free scores 1.
	referenceCostPer1k = 0.01

	// Quality-score weights for the best-effort fallback, which ranks on
	// tier, node cost and distance when no semantic tier is confident.
	qualityTierWeight = 0.5
	qualityCostWeight = 0.3
	qualityHopPenalty = 0.05
)

// ScoreBreakdown keeps every sub-score alongside the composite so that
// explanations and tests can see how a ranking came about.
type ScoreBreakdown struct {
	Semantic  float64 `json:"semantic"`
	Latency   float64 `json:"latency"`
	Feature   float64 `json:"feature"`
	Hop       float64 `json:"hop"`
	Cost      float64 `json:"cost"`
	Composite float64 `json:"composite"`
}

// ScoreCapability combines the matcher's semantic similarity with the
// record's latency, feature set, hop distance and price into the composite
// ranking number. All sub-scores land in [0,1], so the composite does too.
func ScoreCapability(rec CapabilityRecord, semantic float64, c *RouteConstraints) ScoreBreakdown {
	ceiling := DefaultLatencyCeilingMs
	if c != nil && c.MaxLatencyMs != nil && *c.MaxLatencyMs > 0 {
		ceiling = *c.MaxLatencyMs
	}

	b := ScoreBreakdown{
		Semantic: clamp01(semantic),
		Latency:  1 - clamp01(rec.EstimatedLatencyMs/ceiling),
		Feature:  featureScore(rec),
		Hop:      math.Max(0, 1-float64(rec.Hops)/10),
		Cost:     costScore(rec.APICostPer1kTokens),
	}
	b.Composite = WeightSemantic*b.Semantic +
		WeightLatency*b.Latency +
		WeightFeature*b.Feature +
		WeightHop*b.Hop +
		WeightCost*b.Cost
	return b
}

// featureScore rewards capability richness: base 0.5, +0.15 each for RAG and
// tools, +0.10 for vision, +0.10 for any specialization tag, capped at 1.0.
func featureScore(rec CapabilityRecord) float64 {
	score := 0.5
	if rec.HasRag {
		score += 0.15
	}
	if rec.HasTools {
		score += 0.15
	}
	if rec.HasVision {
		score += 0.10
	}
	if len(rec.Specializations) > 0 {
		score += 0.10
	}
	return math.Min(1, score)
}

// costScore normalizes price against the reference point: free costs score
// 1.0, anything at or above the reference scores 0.
func costScore(perThousand float64) float64 {
	if perThousand <= 0 {
		return 1.0
	}
	return math.Max(0, 1-perThousand/referenceCostPer1k)
}

// QualityScore ranks a capability on tier, node cost and distance alone.
// The router uses it to pick a best-effort fallback when the match cascade
// finds nothing confident. 1/Cost() collapses to 0 for a shut-down node, so
// such nodes sink even here.
func QualityScore(rec CapabilityRecord) float64 {
	return qualityTierWeight*rec.ModelTier.Score() +
		qualityCostWeight*math.Min(1, 1/rec.NodeCost()) -
		qualityHopPenalty*float64(rec.Hops)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
