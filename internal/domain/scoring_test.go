package domain

import (
	"math"
	"testing"
)

func TestCompositeWeightsSumToOne(t *testing.T) {
	sum := WeightSemantic + WeightLatency + WeightFeature + WeightHop + WeightCost
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

func TestScoreCapabilityStaysInUnitInterval(t *testing.T) {
	tests := []struct {
		name     string
		record   CapabilityRecord
		semantic float64
	}{
		{
			name: "rich local capability",
			record: CapabilityRecord{
				ModelTier:          TierXL,
				EstimatedLatencyMs: 50,
				Hops:               0,
				HasRag:             true,
				HasTools:           true,
				HasVision:          true,
				Specializations:    []string{"code"},
			},
			semantic: 1.0,
		},
		{
			name: "poor remote capability",
			record: CapabilityRecord{
				ModelTier:          TierTiny,
				EstimatedLatencyMs: 9000,
				Hops:               25,
				APICostPer1kTokens: 0.5,
			},
			semantic: 0.0,
		},
		{
			name: "out-of-range semantic clamps",
			record: CapabilityRecord{
				EstimatedLatencyMs: -10,
			},
			semantic: 1.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ScoreCapability(tt.record, tt.semantic, nil)
			for name, v := range map[string]float64{
				"semantic":  b.Semantic,
				"latency":   b.Latency,
				"feature":   b.Feature,
				"hop":       b.Hop,
				"cost":      b.Cost,
				"composite": b.Composite,
			} {
				if v < 0 || v > 1 {
					t.Errorf("%s = %v, want within [0,1]", name, v)
				}
			}
		})
	}
}

func TestLatencySubScore(t *testing.T) {
	tests := []struct {
		name        string
		latencyMs   float64
		constraints *RouteConstraints
		expected    float64
	}{
		{name: "instant", latencyMs: 0, expected: 1.0},
		{name: "half of default ceiling", latencyMs: 1000, expected: 0.5},
		{name: "at default ceiling", latencyMs: 2000, expected: 0.0},
		{name: "beyond ceiling clamps", latencyMs: 4000, expected: 0.0},
		{
			name:        "constraint ceiling rescales",
			latencyMs:   250,
			constraints: &RouteConstraints{MaxLatencyMs: f64(500)},
			expected:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := CapabilityRecord{EstimatedLatencyMs: tt.latencyMs}
			b := ScoreCapability(rec, 0, tt.constraints)
			if !almostEqual(b.Latency, tt.expected) {
				t.Errorf("Latency = %v, want %v", b.Latency, tt.expected)
			}
		})
	}
}

func TestFeatureSubScore(t *testing.T) {
	tests := []struct {
		name     string
		record   CapabilityRecord
		expected float64
	}{
		{name: "bare", record: CapabilityRecord{}, expected: 0.5},
		{name: "rag only", record: CapabilityRecord{HasRag: true}, expected: 0.65},
		{name: "rag and tools", record: CapabilityRecord{HasRag: true, HasTools: true}, expected: 0.8},
		{name: "vision only", record: CapabilityRecord{HasVision: true}, expected: 0.6},
		{name: "specializations only", record: CapabilityRecord{Specializations: []string{"legal"}}, expected: 0.6},
		{
			name: "everything caps at one",
			record: CapabilityRecord{
				HasRag:          true,
				HasTools:        true,
				HasVision:       true,
				Specializations: []string{"legal", "code"},
			},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ScoreCapability(tt.record, 0, nil)
			if !almostEqual(b.Feature, tt.expected) {
				t.Errorf("Feature = %v, want %v", b.Feature, tt.expected)
			}
		})
	}
}

func TestHopSubScore(t *testing.T) {
	tests := []struct {
		name     string
		hops     int
		expected float64
	}{
		{name: "local", hops: 0, expected: 1.0},
		{name: "five hops", hops: 5, expected: 0.5},
		{name: "ten hops", hops: 10, expected: 0.0},
		{name: "beyond ten floors at zero", hops: 15, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ScoreCapability(CapabilityRecord{Hops: tt.hops}, 0, nil)
			if !almostEqual(b.Hop, tt.expected) {
				t.Errorf("Hop = %v, want %v", b.Hop, tt.expected)
			}
		})
	}
}

func TestCostSubScore(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		expected float64
	}{
		{name: "free", price: 0, expected: 1.0},
		{name: "half the reference", price: 0.005, expected: 0.5},
		{name: "at the reference", price: 0.01, expected: 0.0},
		{name: "above the reference floors", price: 0.02, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ScoreCapability(CapabilityRecord{APICostPer1kTokens: tt.price}, 0, nil)
			if !almostEqual(b.Cost, tt.expected) {
				t.Errorf("Cost = %v, want %v", b.Cost, tt.expected)
			}
		})
	}
}

func TestCompositeIsWeightedSum(t *testing.T) {
	rec := CapabilityRecord{
		ModelTier:          TierLarge,
		EstimatedLatencyMs: 500,
		Hops:               2,
		HasRag:             true,
		APICostPer1kTokens: 0.002,
	}
	b := ScoreCapability(rec, 0.75, nil)

	want := WeightSemantic*b.Semantic +
		WeightLatency*b.Latency +
		WeightFeature*b.Feature +
		WeightHop*b.Hop +
		WeightCost*b.Cost
	if !almostEqual(b.Composite, want) {
		t.Errorf("Composite = %v, want %v", b.Composite, want)
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name     string
		record   CapabilityRecord
		expected float64
	}{
		{
			name:     "xl local with no snapshot",
			record:   CapabilityRecord{ModelTier: TierXL, Hops: 0},
			expected: 0.5*1.0 + 0.3*1.0,
		},
		{
			name:     "tiny three hops away",
			record:   CapabilityRecord{ModelTier: TierTiny, Hops: 3},
			expected: 0.5*0.2 + 0.3*1.0 - 0.05*3,
		},
		{
			name: "cheap node beats nothing when shut down",
			record: CapabilityRecord{
				ModelTier: TierXL,
				Cost:      &CostSnapshot{ThermalState: ThermalShutdown},
			},
			expected: 0.5 * 1.0, // cost term collapses to zero
		},
		{
			name: "expensive node discounts quality",
			record: CapabilityRecord{
				ModelTier: TierMedium,
				Cost: &CostSnapshot{
					BatteryLevel: 10, // 5.0 multiplier, everything else neutral
					NetworkType:  NetworkWifi,
				},
			},
			expected: 0.5*0.6 + 0.3*(1.0/5.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityScore(tt.record); !almostEqual(got, tt.expected) {
				t.Errorf("QualityScore() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// f64, intp and tierp build optional constraint fields in tests.
func f64(v float64) *float64       { return &v }
func intp(v int) *int              { return &v }
func tierp(v ModelTier) *ModelTier { return &v }
