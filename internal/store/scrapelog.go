package store

import (
	"fmt"
	"time"
)

// AppendScrapeAttempt records one fetch attempt in the audit log.
// The log is append-only; rows are never updated or deleted.
func (s *Store) AppendScrapeAttempt(a *ScrapeAttempt) error {
	result, err := s.db.Exec(`
		INSERT INTO scrape_log (run_id, source, team_slug, url, status, records_found, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.RunID, a.Source, a.TeamSlug, a.URL, a.Status, a.RecordsFound, a.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to append scrape attempt: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		a.ID = id
	}

	return nil
}

// GetRecentScrapeAttempts retrieves the most recent audit rows, newest first
func (s *Store) GetRecentScrapeAttempts(limit int) ([]*ScrapeAttempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, COALESCE(run_id, ''), source, COALESCE(team_slug, ''), COALESCE(url, ''),
		       status, records_found, COALESCE(error_message, ''), scraped_at
		FROM scrape_log
		ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape log: %w", err)
	}
	defer rows.Close()

	var attempts []*ScrapeAttempt
	for rows.Next() {
		a := &ScrapeAttempt{}
		err := rows.Scan(
			&a.ID, &a.RunID, &a.Source, &a.TeamSlug, &a.URL,
			&a.Status, &a.RecordsFound, &a.ErrorMessage, &a.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// GetFailedScrapeAttempts retrieves audit rows with status error since the
// given time, newest first
func (s *Store) GetFailedScrapeAttempts(since time.Time, limit int) ([]*ScrapeAttempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, COALESCE(run_id, ''), source, COALESCE(team_slug, ''), COALESCE(url, ''),
		       status, records_found, COALESCE(error_message, ''), scraped_at
		FROM scrape_log
		WHERE status = 'error' AND scraped_at >= ?
		ORDER BY id DESC LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape log: %w", err)
	}
	defer rows.Close()

	var attempts []*ScrapeAttempt
	for rows.Next() {
		a := &ScrapeAttempt{}
		err := rows.Scan(
			&a.ID, &a.RunID, &a.Source, &a.TeamSlug, &a.URL,
			&a.Status, &a.RecordsFound, &a.ErrorMessage, &a.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// CountScrapeAttempts returns the total number of audit rows
func (s *Store) CountScrapeAttempts() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM scrape_log").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scrape attempts: %w", err)
	}
	return count, nil
}

// SourceStat aggregates audit rows for one source
type SourceStat struct {
	Source   string
	Attempts int
	Success  int
	Warnings int
	Errors   int
	Records  int
}

// GetSourceStats aggregates the audit log per source, ordered by attempt
// count descending
func (s *Store) GetSourceStats() ([]*SourceStat, error) {
	rows, err := s.db.Query(`
		SELECT source,
		       COUNT(*),
		       SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'warning' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END),
		       SUM(records_found)
		FROM scrape_log
		GROUP BY source
		ORDER BY COUNT(*) DESC, source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source stats: %w", err)
	}
	defer rows.Close()

	var stats []*SourceStat
	for rows.Next() {
		st := &SourceStat{}
		err := rows.Scan(&st.Source, &st.Attempts, &st.Success, &st.Warnings, &st.Errors, &st.Records)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source stat: %w", err)
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}
