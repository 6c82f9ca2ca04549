package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

// MatchMethod identifies how a winning candidate was found.
type MatchMethod string

const (
	MatchFingerprint MatchMethod = "fingerprint"
	MatchKeyword     MatchMethod = "keyword"
	MatchFuzzy       MatchMethod = "fuzzy"

	// MatchFallback tags a best-effort pick made by the router when no
	// cascade tier was confident. The matcher itself never emits it.
	MatchFallback MatchMethod = "fallback"
)

// Match pairs a capability with the similarity a cascade tier found for it.
type Match struct {
	Record CapabilityRecord
	Score  float64
	Method MatchMethod
}

// matchTiers is the cascade order: cheap fingerprint comparison first,
// keyword overlap second, fuzzy text similarity last.
var matchTiers = [...]MatchMethod{MatchFingerprint, MatchKeyword, MatchFuzzy}

// fingerprintMinSimilarity gates tier 1 to near-duplicates. Two unrelated
// 64-bit SimHashes already agree on about half their bits, so similarities
// below this floor carry no signal.
const fingerprintMinSimilarity = 0.9

// BestMatch runs the cascade over the candidates and returns the best match
// of the first tier that produces a score >= minScore. Later tiers are never
// consulted once an earlier one is confident. Returns ok=false when no tier
// clears minScore; the caller decides whether to fall back.
func BestMatch(q *Query, candidates []CapabilityRecord, minScore float64) (Match, bool) {
	if q == nil || len(candidates) == 0 {
		return Match{}, false
	}
	for _, method := range matchTiers {
		if m, ok := bestByTier(q, candidates, method, minScore); ok {
			return m, true
		}
	}
	return Match{}, false
}

// AllMatches returns every candidate whose best tier clears threshold,
// sorted descending by score, capped at limit (0 = no cap). Meant for
// alternative-ranking, so each candidate gets its best score across all
// three tiers rather than cascade short-circuiting.
func AllMatches(q *Query, candidates []CapabilityRecord, threshold float64, limit int) []Match {
	if q == nil || len(candidates) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(candidates))
	for _, rec := range candidates {
		if m, ok := bestAcrossTiers(q, rec); ok && m.Score >= threshold {
			matches = append(matches, m)
		}
	}
	sortMatches(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// bestByTier scans one tier over all candidates and keeps the best
// qualifying match.
func bestByTier(q *Query, candidates []CapabilityRecord, method MatchMethod, minScore float64) (Match, bool) {
	var best Match
	found := false
	for _, rec := range candidates {
		score, ok := tierScore(q, rec, method)
		if !ok || score < minScore {
			continue
		}
		if !found || beats(score, rec, best) {
			best = Match{Record: rec, Score: score, Method: method}
			found = true
		}
	}
	return best, found
}

// bestAcrossTiers returns a single candidate's best score over all tiers.
func bestAcrossTiers(q *Query, rec CapabilityRecord) (Match, bool) {
	best := Match{Record: rec, Score: -1}
	for _, method := range matchTiers {
		if score, ok := tierScore(q, rec, method); ok && score > best.Score {
			best.Score = score
			best.Method = method
		}
	}
	return best, best.Score >= 0
}

// tierScore computes one tier's similarity for one candidate. ok=false means
// the tier does not apply (no fingerprint, fingerprints not near-duplicates,
// no tokens, empty text).
func tierScore(q *Query, rec CapabilityRecord, method MatchMethod) (float64, bool) {
	switch method {
	case MatchFingerprint:
		if q.Fingerprint == 0 || rec.Fingerprint == 0 {
			return 0, false
		}
		sim := FingerprintSimilarity(q.Fingerprint, rec.Fingerprint)
		if sim < fingerprintMinSimilarity {
			return 0, false
		}
		return sim, true
	case MatchKeyword:
		if len(q.Tokens) == 0 {
			return 0, false
		}
		return keywordSimilarity(q.Tokens, rec), true
	case MatchFuzzy:
		if q.Normalized == "" {
			return 0, false
		}
		return fuzzySimilarity(q.Normalized, rec), true
	default:
		return 0, false
	}
}

// beats reports whether (score, rec) outranks the current best. Ties break
// by higher model tier, then fewer hops, then lower price.
func beats(score float64, rec CapabilityRecord, best Match) bool {
	if score != best.Score {
		return score > best.Score
	}
	if rec.ModelTier != best.Record.ModelTier {
		return rec.ModelTier > best.Record.ModelTier
	}
	if rec.Hops != best.Record.Hops {
		return rec.Hops < best.Record.Hops
	}
	return rec.APICostPer1kTokens < best.Record.APICostPer1kTokens
}

// keywordSimilarity is the Jaccard overlap between the query tokens and the
// candidate's keyword set united with its description tokens.
func keywordSimilarity(tokens []string, rec CapabilityRecord) float64 {
	corpus := make(map[string]struct{}, len(rec.Keywords)+8)
	for _, k := range rec.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			corpus[k] = struct{}{}
		}
	}
	for _, tok := range Tokenize(rec.Description) {
		corpus[tok] = struct{}{}
	}
	if len(corpus) == 0 {
		return 0
	}

	qset := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		qset[tok] = struct{}{}
	}

	intersection := 0
	for tok := range qset {
		if _, ok := corpus[tok]; ok {
			intersection++
		}
	}
	union := len(qset) + len(corpus) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// fuzzySimilarity is the tier-3 fallback: the best normalized text
// similarity between the query and the candidate's label or description.
func fuzzySimilarity(query string, rec CapabilityRecord) float64 {
	best := textSimilarity(query, strings.ToLower(rec.Label))
	if s := textSimilarity(query, strings.ToLower(rec.Description)); s > best {
		best = s
	}
	return best
}

// textSimilarity takes the better of substring containment (shorter string
// inside the longer, scaled by length ratio) and normalized edit distance.
// Closer text always scores higher; identical text scores 1.0.
func textSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	containment := 0.0
	if strings.Contains(longer, shorter) {
		containment = float64(utf8.RuneCountInString(shorter)) / float64(utf8.RuneCountInString(longer))
	}

	runes := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	edit := 1 - float64(levenshtein(a, b))/float64(runes)
	return math.Max(containment, edit)
}

// levenshtein is a two-row edit-distance computation over runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// sortMatches sorts by score descending with the cascade tie-break.
func sortMatches(matches []Match) {
	// Simple bubble sort (fine for small lists)
	n := len(matches)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if beats(matches[j+1].Score, matches[j+1].Record, matches[j]) {
				matches[j], matches[j+1] = matches[j+1], matches[j]
			}
		}
	}
}
