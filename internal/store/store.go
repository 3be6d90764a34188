package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/roster-scout/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	currentSchemaVersion = 2
)

// Store represents the application's persistent state
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*Store, error) {
	// Open with pragmas for performance and reliability
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with a single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// migrate applies database migrations
func (s *Store) migrate() error {
	// Check current schema version
	version, err := s.getSchemaVersion()
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	if version >= currentSchemaVersion {
		// Already at current version
		return nil
	}

	// Start transaction for migration
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Apply schema v1
	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// Apply schema v2 - provenance tracking
	if version < 2 {
		if _, err := tx.Exec(schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
		if err := s.setSchemaVersion(tx, 2); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// Future migrations would go here:
	// if version < 3 { ... }

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	// Check if schema_version table exists
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		// No schema yet
		return 0, nil
	}

	// Get latest version
	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion records a schema version in a transaction
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Player represents one canonical player record, unique per
// (team, season, first_name, last_name)
type Player struct {
	ID            int64
	Team          string
	Season        int
	FirstName     string
	LastName      string
	Position      string
	JerseyNumber  int
	HeightIn      int
	WeightLb      int
	Birthdate     string
	Birthplace    string
	Citizenship   string
	HometownCity  string
	HometownState string

	// High school fields travel as a unit with their provenance
	HighSchool           string
	HighSchoolCity       string
	HighSchoolState      string
	HighSchoolSourceURL  string
	HighSchoolSourceName string

	HeadshotURL string
	BioURL      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName returns the player's display name
func (p *Player) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Match represents one scheduled or completed match, unique per match_id.
// Scores are -1 until the match has been played.
type Match struct {
	ID          int64
	MatchID     string
	Season      int
	MatchDate   string
	MatchTime   string
	HomeTeam    string
	AwayTeam    string
	HomeTeamRaw string
	AwayTeamRaw string
	Venue       string
	Competition string
	Broadcast   string
	Status      string
	HomeScore   int
	AwayScore   int
	MatchURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HighSchoolRef represents one canonical high-school reference entry,
// unique per raw_name
type HighSchoolRef struct {
	ID             int64
	RawName        string
	NormalizedName string
	CanonicalName  string
	City           string
	State          string
	CatalogID      string
	MatchStatus    string
	Confidence     float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScrapeAttempt represents one append-only audit row for a fetch attempt
type ScrapeAttempt struct {
	ID           int64
	RunID        string
	Source       string
	TeamSlug     string
	URL          string
	Status       string
	RecordsFound int
	ErrorMessage string
	ScrapedAt    time.Time
}

// FieldSource records which source supplied the current value of one
// player field
type FieldSource struct {
	PlayerID  int64
	Field     string
	Source    string
	Rank      int
	UpdatedAt time.Time
}
