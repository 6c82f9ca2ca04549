package domain

// Alternative pairs a non-winning candidate with its composite score.
type Alternative struct {
	Record    CapabilityRecord `json:"record"`
	Composite float64          `json:"composite"`
}

// RoutingDecision is the outcome of one routing call: the winner, how it was
// found, why, and what else came close. Built fresh on every call and owned
// solely by the caller; nothing here is persisted.
type RoutingDecision struct {
	Record       CapabilityRecord `json:"record"`
	Breakdown    ScoreBreakdown   `json:"breakdown"`
	Method       MatchMethod      `json:"method"`
	Explanation  string           `json:"explanation"`
	Alternatives []Alternative    `json:"alternatives,omitempty"`
}

// IsFallback reports whether the winner came from the best-effort quality
// ranking rather than a confident semantic match.
func (d *RoutingDecision) IsFallback() bool {
	return d.Method == MatchFallback
}
