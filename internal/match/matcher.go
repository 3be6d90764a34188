package match

import (
	"fmt"

	"github.com/franz/roster-scout/internal/normalize"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
)

// Resolution states for high-school reference entries
const (
	StatusPending   = "pending"
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
	StatusAmbiguous = "ambiguous"
)

// Default similarity thresholds. A best score at or above High with a
// clear margin over the runner-up is a confident match; between Low and
// High the candidate set is too close to pick from automatically.
const (
	DefaultHighThreshold = 0.85
	DefaultLowThreshold  = 0.60
	DefaultMargin        = 0.05
)

// Matcher resolves raw high-school names against the canonical reference
// table, creating provisional entries when nothing acceptable exists
type Matcher struct {
	store  *store.Store
	logger *report.EventLogger

	High   float64
	Low    float64
	Margin float64
}

// Config holds matcher configuration
type Config struct {
	Store  *store.Store
	Logger *report.EventLogger

	// Zero thresholds fall back to the defaults
	High   float64
	Low    float64
	Margin float64
}

// New creates a new Matcher
func New(cfg *Config) *Matcher {
	m := &Matcher{
		store:  cfg.Store,
		logger: cfg.Logger,
		High:   cfg.High,
		Low:    cfg.Low,
		Margin: cfg.Margin,
	}
	if m.High == 0 {
		m.High = DefaultHighThreshold
	}
	if m.Low == 0 {
		m.Low = DefaultLowThreshold
	}
	if m.Margin == 0 {
		m.Margin = DefaultMargin
	}
	return m
}

// Result describes how a raw name resolved
type Result struct {
	Ref        *store.HighSchoolRef
	Status     string
	Confidence float64
	Created    bool
}

// Match resolves a raw school name to a reference entry. Tiers, first
// success wins: exact raw string, normalized key, then bigram similarity
// against the whole reference table. When no tier produces a confident
// match a new provisional entry is created (status pending, or ambiguous
// when close candidates exist), so the same raw spelling always resolves
// to the same entry on every later call.
func (m *Matcher) Match(rawName string) (*Result, error) {
	raw := normalize.Clean(rawName)
	if raw == "" {
		return nil, fmt.Errorf("empty school name")
	}

	// Tier 1: exact raw string
	ref, err := m.store.GetHighSchoolRefByRawName(raw)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		m.logger.LogSchoolMatch(raw, StatusMatched, 1.0, false)
		return &Result{Ref: ref, Status: StatusMatched, Confidence: 1.0}, nil
	}

	key := normalize.SchoolKey(raw)

	// Tier 2: normalized key
	if key != "" {
		ref, err = m.store.GetHighSchoolRefByNormalized(key)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			m.logger.LogSchoolMatch(raw, StatusMatched, 0.9, false)
			return &Result{Ref: ref, Status: StatusMatched, Confidence: 0.9}, nil
		}
	}

	// Tier 3: similarity against every existing entry, in id order so
	// ties resolve to the oldest entry deterministically
	best, second, err := m.closestRefs(key, 0)
	if err != nil {
		return nil, err
	}

	if best != nil && best.score >= m.High && best.score-second >= m.Margin {
		m.logger.LogSchoolMatch(raw, StatusMatched, best.score, false)
		return &Result{Ref: best.ref, Status: StatusMatched, Confidence: best.score}, nil
	}

	// Tier 4: create a provisional entry. Close-but-unconfident scores
	// are recorded as ambiguous rather than forcing a pick.
	status := StatusPending
	confidence := 0.0
	if best != nil && best.score >= m.Low {
		status = StatusAmbiguous
		confidence = best.score
	}

	entry, wasNew, err := m.store.EnsureHighSchoolRef(&store.HighSchoolRef{
		RawName:        raw,
		NormalizedName: key,
		MatchStatus:    status,
		Confidence:     confidence,
	})
	if err != nil {
		return nil, err
	}

	m.logger.LogSchoolMatch(raw, status, confidence, wasNew)
	return &Result{Ref: entry, Status: entry.MatchStatus, Confidence: entry.Confidence, Created: wasNew}, nil
}

// scoredRef pairs a reference entry with its similarity to a query key
type scoredRef struct {
	ref   *store.HighSchoolRef
	score float64
}

// closestRefs returns the best-scoring entry and the runner-up score for
// a query key, skipping the entry with id selfID
func (m *Matcher) closestRefs(key string, selfID int64) (*scoredRef, float64, error) {
	if key == "" {
		return nil, 0, nil
	}

	refs, err := m.store.GetAllHighSchoolRefs()
	if err != nil {
		return nil, 0, err
	}

	var best *scoredRef
	second := 0.0
	for _, ref := range refs {
		if ref.ID == selfID {
			continue
		}
		score := Similarity(key, ref.NormalizedName)
		if best == nil || score > best.score {
			if best != nil {
				second = best.score
			}
			best = &scoredRef{ref: ref, score: score}
		} else if score > second {
			second = score
		}
	}

	return best, second, nil
}

// RematchResult summarizes a re-resolution pass over unresolved entries
type RematchResult struct {
	Examined  int
	Matched   int
	Ambiguous int
	Unmatched int
}

// RematchPending re-runs similarity resolution for entries still pending
// or ambiguous, now that the reference table has grown. Entries that
// resolve against another entry are marked matched and adopt its
// canonical identity; entries with nothing close are marked unmatched so
// they stop being re-examined as "new".
func (m *Matcher) RematchPending() (*RematchResult, error) {
	result := &RematchResult{}

	for _, status := range []string{StatusPending, StatusAmbiguous} {
		refs, err := m.store.GetHighSchoolRefsByStatus(status)
		if err != nil {
			return nil, err
		}

		for _, ref := range refs {
			result.Examined++

			best, second, err := m.closestRefs(ref.NormalizedName, ref.ID)
			if err != nil {
				return nil, err
			}

			switch {
			case best != nil && best.score >= m.High && best.score-second >= m.Margin:
				canonical := best.ref.CanonicalName
				if canonical == "" {
					canonical = best.ref.RawName
				}
				err = m.store.UpdateHighSchoolRefMatch(ref.ID, canonical, best.ref.CatalogID, StatusMatched, best.score)
				if err != nil {
					return nil, err
				}
				result.Matched++
				m.logger.LogRematch(ref.RawName, ref.MatchStatus, StatusMatched, best.score)

			case best != nil && best.score >= m.Low:
				err = m.store.UpdateHighSchoolRefMatch(ref.ID, ref.CanonicalName, ref.CatalogID, StatusAmbiguous, best.score)
				if err != nil {
					return nil, err
				}
				result.Ambiguous++
				m.logger.LogRematch(ref.RawName, ref.MatchStatus, StatusAmbiguous, best.score)

			default:
				err = m.store.UpdateHighSchoolRefMatch(ref.ID, ref.CanonicalName, ref.CatalogID, StatusUnmatched, ref.Confidence)
				if err != nil {
					return nil, err
				}
				result.Unmatched++
				m.logger.LogRematch(ref.RawName, ref.MatchStatus, StatusUnmatched, ref.Confidence)
			}
		}
	}

	return result, nil
}
