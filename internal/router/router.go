package router

import (
	"context"
	"errors"
	"time"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
)

const (
	// MinMatchScore is the floor below which no cascade tier counts as
	// confident.
	MinMatchScore = 0.1

	// AlternativeThreshold and MaxAlternatives bound the runner-up list.
	AlternativeThreshold = 0.3
	MaxAlternatives      = 5
)

// The three null-route outcomes. The HTTP layer maps them to reason codes;
// anything else going wrong during routing is a bug, not an error.
var (
	ErrNoCandidates = errors.New("no live capabilities in the directory")
	ErrNoEligible   = errors.New("no capability satisfies the constraints")
	ErrNoAvailable  = errors.New("every eligible node is unavailable")
)

// Directory is the router's read-only view of the capability mesh.
type Directory interface {
	GetAllCapabilities() []domain.CapabilityRecord
	GetCapability(id string) (domain.CapabilityRecord, bool)
	Stats() map[string]any
}

// Router turns a query plus constraints into a routing decision against the
// directory's current snapshot. Stateless apart from the directory handle,
// so safe for concurrent use.
type Router struct {
	directory Directory
	log       logger.Logger
	now       func() time.Time
}

func New(directory Directory, log logger.Logger) *Router {
	return &Router{
		directory: directory,
		log:       log,
		now:       time.Now,
	}
}

// Route picks the best capability for the query. A nil decision always comes
// with one of the sentinel errors; a non-nil decision is always complete.
// An empty query is not an error; it matches nothing and falls through to
// the quality fallback.
func (r *Router) Route(ctx context.Context, query string, fingerprint uint64, constraints *domain.RouteConstraints) (*domain.RoutingDecision, error) {
	snapshot := r.directory.GetAllCapabilities()
	if len(snapshot) == 0 {
		return nil, ErrNoCandidates
	}

	now := r.now()
	live := domain.FilterCapabilities(snapshot, nil, now)
	if len(live) == 0 {
		return nil, ErrNoCandidates
	}

	eligible := domain.FilterCapabilities(live, constraints, now)
	if len(eligible) == 0 {
		return nil, ErrNoEligible
	}

	available := make([]domain.CapabilityRecord, 0, len(eligible))
	for _, rec := range eligible {
		if rec.IsAvailable() {
			available = append(available, rec)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoAvailable
	}

	q := domain.ParseQuery(query, fingerprint)

	match, ok := domain.BestMatch(q, available, MinMatchScore)
	if !ok {
		match = fallbackMatch(q, available)
		r.log.Debug("no confident match, falling back to best available",
			logger.String("query", q.Normalized),
			logger.String("capability", match.Record.ID),
		)
	}

	breakdown := domain.ScoreCapability(match.Record, match.Score, constraints)
	alternatives := alternativesFor(q, available, match.Record.ID, constraints)

	decision := &domain.RoutingDecision{
		Record:       match.Record,
		Breakdown:    breakdown,
		Method:       match.Method,
		Explanation:  renderExplanation(match, constraints),
		Alternatives: alternatives,
	}

	r.log.Debug("routed",
		logger.String("capability", decision.Record.ID),
		logger.String("node", decision.Record.NodeID),
		logger.String("method", string(decision.Method)),
		logger.Float64("composite", breakdown.Composite),
		logger.Int("alternatives", len(alternatives)),
	)
	return decision, nil
}

// FilterCandidates exposes the eligibility step on its own: the live,
// constraint-satisfying records the router would rank right now.
func (r *Router) FilterCandidates(constraints *domain.RouteConstraints) []domain.CapabilityRecord {
	return domain.FilterCapabilities(r.directory.GetAllCapabilities(), constraints, r.now())
}

// Stats passes directory statistics through for the stats endpoint.
func (r *Router) Stats() map[string]any {
	return r.directory.Stats()
}

// fallbackMatch ranks candidates by quality alone and tags the winner as a
// fallback pick. The match score carries the winner's true best similarity,
// which by construction sits below MinMatchScore here.
func fallbackMatch(q *domain.Query, candidates []domain.CapabilityRecord) domain.Match {
	best := candidates[0]
	bestQuality := domain.QualityScore(best)
	for _, rec := range candidates[1:] {
		if quality := domain.QualityScore(rec); quality > bestQuality {
			best, bestQuality = rec, quality
		}
	}

	semantic := 0.0
	if ms := domain.AllMatches(q, []domain.CapabilityRecord{best}, 0, 1); len(ms) > 0 {
		semantic = ms[0].Score
	}
	return domain.Match{Record: best, Score: semantic, Method: domain.MatchFallback}
}

// alternativesFor lists the runners-up clearing the alternative threshold,
// composite-scored. One extra slot is requested from the matcher so the
// winner never eats into the cap.
func alternativesFor(q *domain.Query, candidates []domain.CapabilityRecord, winnerID string, c *domain.RouteConstraints) []domain.Alternative {
	matches := domain.AllMatches(q, candidates, AlternativeThreshold, MaxAlternatives+1)

	alts := make([]domain.Alternative, 0, len(matches))
	for _, m := range matches {
		if m.Record.ID == winnerID {
			continue
		}
		alts = append(alts, domain.Alternative{
			Record:    m.Record,
			Composite: domain.ScoreCapability(m.Record, m.Score, c).Composite,
		})
	}
	if len(alts) > MaxAlternatives {
		alts = alts[:MaxAlternatives]
	}
	sortAlternatives(alts)
	return alts
}

// sortAlternatives orders by composite descending.
func sortAlternatives(alts []domain.Alternative) {
	// Simple bubble sort (fine for small lists)
	for i := 0; i < len(alts)-1; i++ {
		for j := 0; j < len(alts)-i-1; j++ {
			if alts[j+1].Composite > alts[j].Composite {
				alts[j], alts[j+1] = alts[j+1], alts[j]
			}
		}
	}
}
