package domain

import "strings"

// Query represents a parsed routing request.
type Query struct {
	Raw         string   // original input
	Normalized  string   // lowercased, trimmed
	Tokens      []string // lowercase tokens of length > 2
	Fingerprint uint64   // 64-bit content fingerprint
}

// ParseQuery normalizes the input and prepares it for the match cascade.
// A zero fingerprint means "compute from the text"; a caller that already
// holds one (e.g. from a repeated query) passes it through untouched.
// Empty input parses to a query with no tokens and no fingerprint; it is
// not an error, it just scores poorly in every tier.
func ParseQuery(input string, fingerprint uint64) *Query {
	normalized := strings.TrimSpace(strings.ToLower(input))
	q := &Query{
		Raw:         input,
		Normalized:  normalized,
		Tokens:      Tokenize(normalized),
		Fingerprint: fingerprint,
	}
	if q.Fingerprint == 0 {
		q.Fingerprint = Fingerprint(normalized)
	}
	return q
}
