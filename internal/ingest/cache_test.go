package ingest

import (
	"os"
	"testing"
	"time"

	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/store"
)

func newIngestTestStore(t *testing.T, name string) *store.Store {
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

	return st
}

func newTestCache(t *testing.T, name string) *LookupCache {
	t.Helper()

	st := newIngestTestStore(t, name)
	cache := NewLookupCache(st.DB())
	if err := cache.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return cache
}

func TestLookupCachePutGet(t *testing.T) {
	cache := newTestCache(t, "test-cache-putget.db")

	claim := &reconcile.HighSchoolClaim{
		Name:       "Walter Payton College Prep High School",
		City:       "Chicago",
		State:      "IL",
		SourceURL:  "https://en.wikipedia.org/wiki/Christopher_Cupps",
		SourceName: "Wikipedia",
	}

	if err := cache.Put("wikipedia", "Christopher Cupps", claim); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cache.Get("wikipedia", "Christopher Cupps")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected cache hit")
	}
	if !got.Found {
		t.Error("Expected positive entry")
	}
	if got.Claim == nil || got.Claim.Name != claim.Name {
		t.Errorf("Claim did not round-trip: %+v", got.Claim)
	}
	if got.Claim.City != "Chicago" || got.Claim.State != "IL" {
		t.Errorf("Location did not round-trip: %+v", got.Claim)
	}
	if got.Claim.SourceName != "Wikipedia" {
		t.Errorf("Provenance did not round-trip: %+v", got.Claim)
	}
	if got.HitCount != 0 {
		t.Errorf("First hit should read count 0, got %d", got.HitCount)
	}

	// The hit counter is bumped after each read
	got, err = cache.Get("wikipedia", "Christopher Cupps")
	if err != nil {
		t.Fatalf("Second get failed: %v", err)
	}
	if got.HitCount != 1 {
		t.Errorf("Second hit should read count 1, got %d", got.HitCount)
	}
}

func TestLookupCacheNegativeEntry(t *testing.T) {
	cache := newTestCache(t, "test-cache-negative.db")

	if err := cache.Put("wikipedia", "Dean Boltz", nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cache.Get("wikipedia", "Dean Boltz")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a cached negative entry, not a miss")
	}
	if got.Found {
		t.Error("Expected negative entry")
	}
	if got.Claim != nil {
		t.Errorf("Negative entry should have nil claim, got %+v", got.Claim)
	}
}

func TestLookupCacheMiss(t *testing.T) {
	cache := newTestCache(t, "test-cache-miss.db")

	got, err := cache.Get("wikipedia", "Nobody Known")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected miss, got %+v", got)
	}
}

func TestLookupCacheKeyNormalization(t *testing.T) {
	cache := newTestCache(t, "test-cache-keys.db")

	claim := &reconcile.HighSchoolClaim{
		Name:       "Lincoln High School",
		SourceURL:  "https://example.com",
		SourceName: "Wikipedia",
	}
	if err := cache.Put("wikipedia", "  Christopher Cupps ", claim); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cache.Get("wikipedia", "christopher cupps")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected hit across case and whitespace variants")
	}

	// Same query under a different source is a distinct entry
	other, err := cache.Get("club_announcement", "christopher cupps")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if other != nil {
		t.Error("Sources should not share cache entries")
	}
}

func TestLookupCacheStats(t *testing.T) {
	cache := newTestCache(t, "test-cache-stats.db")

	cache.Put("wikipedia", "player one", nil)
	cache.Put("club_announcement", "player two", nil)
	cache.Get("wikipedia", "player one")
	cache.Get("wikipedia", "player one")

	entries, hits, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if entries != 2 {
		t.Errorf("Expected 2 entries, got %d", entries)
	}
	if hits != 2 {
		t.Errorf("Expected 2 recorded hits, got %d", hits)
	}
}

func TestLookupCacheClearOldEntries(t *testing.T) {
	cache := newTestCache(t, "test-cache-clear.db")

	cache.Put("wikipedia", "player one", nil)
	cache.Put("wikipedia", "player two", nil)

	// Nothing is older than an hour yet
	removed, err := cache.ClearOldEntries(time.Hour)
	if err != nil {
		t.Fatalf("ClearOldEntries failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}

	// A zero-ish horizon clears everything written so far
	removed, err = cache.ClearOldEntries(time.Nanosecond)
	if err != nil {
		t.Fatalf("ClearOldEntries failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	entries, _, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if entries != 0 {
		t.Errorf("Expected empty cache, got %d entries", entries)
	}
}
