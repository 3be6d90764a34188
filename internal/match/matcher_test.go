package match

import (
	"math"
	"os"
	"testing"

	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
)

func newTestMatcher(t *testing.T, name string, cfg *Config) (*Matcher, *store.Store) {
	t.Helper()

	t.Cleanup(func() {
		os.Remove(name)
		os.Remove(name + "-shm")
		os.Remove(name + "-wal")
	})

	st, err := store.Open(name)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Store = st
	cfg.Logger = report.NullLogger()

	return New(cfg), st
}

func seedRef(t *testing.T, st *store.Store, raw, normalized, status string) *store.HighSchoolRef {
	t.Helper()

	ref, _, err := st.EnsureHighSchoolRef(&store.HighSchoolRef{
		RawName:        raw,
		NormalizedName: normalized,
		MatchStatus:    status,
	})
	if err != nil {
		t.Fatalf("failed to seed ref %q: %v", raw, err)
	}
	return ref
}

func TestMatchExactRaw(t *testing.T) {
	m, st := newTestMatcher(t, "test-match-exact.db", nil)
	seeded := seedRef(t, st, "Lincoln High School", "lincoln", StatusPending)

	result, err := m.Match("Lincoln High School")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if result.Status != StatusMatched || result.Confidence != 1.0 {
		t.Errorf("expected exact match at 1.0, got %s %.2f", result.Status, result.Confidence)
	}
	if result.Ref.ID != seeded.ID {
		t.Errorf("expected ref %d, got %d", seeded.ID, result.Ref.ID)
	}
	if result.Created {
		t.Error("exact match must not create a new entry")
	}
}

func TestMatchNormalizedKeyConvergence(t *testing.T) {
	m, st := newTestMatcher(t, "test-match-norm.db", nil)
	seeded := seedRef(t, st, "Walter Payton College Prep", "walter payton", StatusPending)

	// A longer spelling of the same school keys identically
	result, err := m.Match("Walter Payton College Prep High School")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if result.Status != StatusMatched {
		t.Errorf("expected matched, got %s", result.Status)
	}
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9 for key match, got %.2f", result.Confidence)
	}
	if result.Ref.ID != seeded.ID {
		t.Errorf("expected both spellings to resolve to ref %d, got %d", seeded.ID, result.Ref.ID)
	}
}

func TestMatchCreatesPendingAndIsStable(t *testing.T) {
	m, _ := newTestMatcher(t, "test-match-pending.db", nil)

	first, err := m.Match("Montverde Academy")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !first.Created {
		t.Error("expected a provisional entry to be created")
	}
	if first.Status != StatusPending || first.Confidence != 0 {
		t.Errorf("expected pending at 0.0, got %s %.2f", first.Status, first.Confidence)
	}

	// The same raw name must resolve to the same entry forever after
	second, err := m.Match("Montverde Academy")
	if err != nil {
		t.Fatalf("second match failed: %v", err)
	}
	if second.Created {
		t.Error("second match must not create another entry")
	}
	if second.Ref.ID != first.Ref.ID {
		t.Errorf("expected stable ref %d, got %d", first.Ref.ID, second.Ref.ID)
	}
}

func TestMatchSimilarityConfident(t *testing.T) {
	// Similarity("saint marys", "saint marys north") = 20/26, above a
	// lowered high threshold with no runner-up
	m, st := newTestMatcher(t, "test-match-sim.db", &Config{High: 0.7})
	seeded := seedRef(t, st, "Saint Marys North High School", "saint marys north", StatusMatched)

	result, err := m.Match("Saint Marys")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if result.Status != StatusMatched {
		t.Fatalf("expected matched, got %s", result.Status)
	}
	if result.Ref.ID != seeded.ID {
		t.Errorf("expected ref %d, got %d", seeded.ID, result.Ref.ID)
	}
	if math.Abs(result.Confidence-20.0/26.0) > 0.001 {
		t.Errorf("expected confidence %.4f, got %.4f", 20.0/26.0, result.Confidence)
	}
}

func TestMatchAmbiguousMargin(t *testing.T) {
	// Both candidates score 20/26 against the query: above the (lowered)
	// high threshold but inside the margin, so no forced pick
	m, st := newTestMatcher(t, "test-match-margin.db", &Config{High: 0.7})
	seedRef(t, st, "Saint Marys North High School", "saint marys north", StatusMatched)
	seedRef(t, st, "Saint Marys South High School", "saint marys south", StatusMatched)

	result, err := m.Match("Saint Marys")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if result.Status != StatusAmbiguous {
		t.Errorf("expected ambiguous, got %s", result.Status)
	}
	if !result.Created {
		t.Error("ambiguous resolution must create its own entry")
	}
	if math.Abs(result.Confidence-20.0/26.0) > 0.001 {
		t.Errorf("expected confidence %.4f, got %.4f", 20.0/26.0, result.Confidence)
	}

	// The provisional entry is persisted for the rematch pass
	saved, err := st.GetHighSchoolRefByRawName("Saint Marys")
	if err != nil {
		t.Fatalf("failed to read back ref: %v", err)
	}
	if saved == nil || saved.MatchStatus != StatusAmbiguous {
		t.Errorf("expected persisted ambiguous entry, got %+v", saved)
	}
}

func TestMatchAmbiguousBelowHigh(t *testing.T) {
	// Similarity("lincoln east", "lincoln west") = 16/22: above the low
	// threshold, below the high one
	m, st := newTestMatcher(t, "test-match-low.db", nil)
	seedRef(t, st, "Lincoln West High School", "lincoln west", StatusMatched)

	result, err := m.Match("Lincoln East")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if result.Status != StatusAmbiguous {
		t.Errorf("expected ambiguous, got %s", result.Status)
	}
	if math.Abs(result.Confidence-16.0/22.0) > 0.001 {
		t.Errorf("expected confidence %.4f, got %.4f", 16.0/22.0, result.Confidence)
	}
}

func TestRematchPending(t *testing.T) {
	m, st := newTestMatcher(t, "test-rematch.db", nil)

	// Similarity("st marys catholic", "saint marys catholic") = 30/35,
	// enough to resolve once the canonical entry exists
	pending := seedRef(t, st, "St. Marys Catholic HS", "st marys catholic", StatusPending)
	canonical := seedRef(t, st, "Saint Marys Catholic High School", "saint marys catholic", StatusMatched)
	if err := st.UpdateHighSchoolRefMatch(canonical.ID, "Saint Mary's Catholic", "nces-1700123", StatusMatched, 1.0); err != nil {
		t.Fatalf("failed to update canonical ref: %v", err)
	}

	// This one has nothing close and should stop being re-examined
	stray := seedRef(t, st, "Xavier Institute", "xavier institute", StatusPending)

	result, err := m.RematchPending()
	if err != nil {
		t.Fatalf("rematch failed: %v", err)
	}

	if result.Examined != 2 {
		t.Errorf("expected 2 entries examined, got %d", result.Examined)
	}
	if result.Matched != 1 {
		t.Errorf("expected 1 entry matched, got %d", result.Matched)
	}
	if result.Unmatched != 1 {
		t.Errorf("expected 1 entry unmatched, got %d", result.Unmatched)
	}

	resolved, err := st.GetHighSchoolRefByRawName(pending.RawName)
	if err != nil {
		t.Fatalf("failed to read back ref: %v", err)
	}
	if resolved.MatchStatus != StatusMatched {
		t.Errorf("expected pending entry to resolve, got %s", resolved.MatchStatus)
	}
	if resolved.CanonicalName != "Saint Mary's Catholic" {
		t.Errorf("expected canonical name adopted, got %q", resolved.CanonicalName)
	}
	if resolved.CatalogID != "nces-1700123" {
		t.Errorf("expected catalog id adopted, got %q", resolved.CatalogID)
	}
	if math.Abs(resolved.Confidence-30.0/35.0) > 0.001 {
		t.Errorf("expected confidence %.4f, got %.4f", 30.0/35.0, resolved.Confidence)
	}

	left, err := st.GetHighSchoolRefByRawName(stray.RawName)
	if err != nil {
		t.Fatalf("failed to read back ref: %v", err)
	}
	if left.MatchStatus != StatusUnmatched {
		t.Errorf("expected stray entry unmatched, got %s", left.MatchStatus)
	}
}
