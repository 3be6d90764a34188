package ingest

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/util"
)

// LookupCache is database-backed caching for enrichment lookups. A
// player+source pair is fetched at most once per cache lifetime; misses
// are cached too, so a player a source does not know stops costing a
// network round trip.
type LookupCache struct {
	db *sql.DB
}

// CachedLookup is one cached enrichment result. Claim is nil for
// negative entries.
type CachedLookup struct {
	Source   string
	Query    string
	Found    bool
	Claim    *reconcile.HighSchoolClaim
	CachedAt time.Time
	HitCount int
}

// NewLookupCache creates a cache on the given database handle
func NewLookupCache(db *sql.DB) *LookupCache {
	return &LookupCache{db: db}
}

// EnsureSchema creates the cache table if it doesn't exist
func (c *LookupCache) EnsureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookup_cache (
		source TEXT NOT NULL,
		query TEXT NOT NULL,
		found INTEGER NOT NULL DEFAULT 0,
		school_name TEXT,
		city TEXT,
		state TEXT,
		source_url TEXT,
		source_name TEXT,
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		hit_count INTEGER DEFAULT 0,
		PRIMARY KEY (source, query)
	);

	CREATE INDEX IF NOT EXISTS idx_lookup_cached_at ON lookup_cache(cached_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create lookup_cache table: %w", err)
	}

	return nil
}

// cacheKey normalizes a query string for use as a cache key
func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get retrieves a cached lookup and bumps its hit counter. Returns
// nil on a cache miss.
func (c *LookupCache) Get(source, query string) (*CachedLookup, error) {
	key := cacheKey(query)

	row := c.db.QueryRow(`
		SELECT found, school_name, city, state, source_url, source_name, cached_at, hit_count
		FROM lookup_cache
		WHERE source = ? AND query = ?
	`, source, key)

	var found int
	var school, city, state, srcURL, srcName sql.NullString
	cached := &CachedLookup{Source: source, Query: key}

	err := row.Scan(&found, &school, &city, &state, &srcURL, &srcName,
		&cached.CachedAt, &cached.HitCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup cache: %w", err)
	}

	cached.Found = found != 0
	if cached.Found {
		cached.Claim = &reconcile.HighSchoolClaim{
			Name:       school.String,
			City:       city.String,
			State:      state.String,
			SourceURL:  srcURL.String,
			SourceName: srcName.String,
		}
	}

	c.incrementHitCount(source, key)
	return cached, nil
}

// Put stores a lookup result. A nil claim records a negative entry, so
// later runs skip the source for this query.
func (c *LookupCache) Put(source, query string, claim *reconcile.HighSchoolClaim) error {
	key := cacheKey(query)

	var found int
	var school, city, state, srcURL, srcName string
	if claim != nil {
		found = 1
		school = claim.Name
		city = claim.City
		state = claim.State
		srcURL = claim.SourceURL
		srcName = claim.SourceName
	}

	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO lookup_cache
		(source, query, found, school_name, city, state, source_url, source_name, cached_at, hit_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT hit_count FROM lookup_cache WHERE source = ? AND query = ?), 0))
	`, source, key, found, school, city, state, srcURL, srcName, time.Now(), source, key)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// incrementHitCount bumps the cache hit counter, best effort
func (c *LookupCache) incrementHitCount(source, key string) {
	_, err := c.db.Exec(`UPDATE lookup_cache SET hit_count = hit_count + 1 WHERE source = ? AND query = ?`,
		source, key)
	if err != nil {
		util.DebugLog("Failed to increment hit count: %v", err)
	}
}

// Stats returns cache entry and hit totals
func (c *LookupCache) Stats() (entries int, totalHits int64, err error) {
	err = c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(hit_count), 0) FROM lookup_cache`).
		Scan(&entries, &totalHits)
	return
}

// ClearOldEntries removes cache entries older than the given duration,
// returning how many were dropped
func (c *LookupCache) ClearOldEntries(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := c.db.Exec(`DELETE FROM lookup_cache WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}
