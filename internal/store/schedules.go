package store

import (
	"database/sql"
	"fmt"
)

// matchColumns is the shared SELECT list for schedule queries.
// Scores come back as -1 when the match has not been played.
const matchColumns = `
	id, match_id, COALESCE(season, 0), COALESCE(match_date, ''), COALESCE(match_time, ''),
	COALESCE(home_team, ''), COALESCE(away_team, ''),
	COALESCE(home_team_raw, ''), COALESCE(away_team_raw, ''),
	COALESCE(venue, ''), COALESCE(competition, ''), COALESCE(broadcast, ''),
	status, COALESCE(home_score, -1), COALESCE(away_score, -1),
	COALESCE(match_url, ''),
	created_at, updated_at`

func scanMatch(row rowScanner) (*Match, error) {
	m := &Match{}
	err := row.Scan(
		&m.ID, &m.MatchID, &m.Season, &m.MatchDate, &m.MatchTime,
		&m.HomeTeam, &m.AwayTeam,
		&m.HomeTeamRaw, &m.AwayTeamRaw,
		&m.Venue, &m.Competition, &m.Broadcast,
		&m.Status, &m.HomeScore, &m.AwayScore,
		&m.MatchURL,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpsertMatch inserts or updates a schedule row keyed by match_id.
// Occupied optional fields are only overwritten by non-empty values, so a
// sparse list page never blanks out details from a richer one.
func (s *Store) UpsertMatch(m *Match) error {
	result, err := s.db.Exec(`
		INSERT INTO schedules (
			match_id, season, match_date, match_time,
			home_team, away_team, home_team_raw, away_team_raw,
			venue, competition, broadcast, status,
			home_score, away_score, match_url
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, -1), NULLIF(?, -1), ?)
		ON CONFLICT(match_id) DO UPDATE SET
			season = excluded.season,
			match_date = COALESCE(NULLIF(excluded.match_date, ''), match_date),
			match_time = COALESCE(NULLIF(excluded.match_time, ''), match_time),
			home_team = COALESCE(NULLIF(excluded.home_team, ''), home_team),
			away_team = COALESCE(NULLIF(excluded.away_team, ''), away_team),
			home_team_raw = COALESCE(NULLIF(excluded.home_team_raw, ''), home_team_raw),
			away_team_raw = COALESCE(NULLIF(excluded.away_team_raw, ''), away_team_raw),
			venue = COALESCE(NULLIF(excluded.venue, ''), venue),
			competition = COALESCE(NULLIF(excluded.competition, ''), competition),
			broadcast = COALESCE(NULLIF(excluded.broadcast, ''), broadcast),
			status = COALESCE(NULLIF(excluded.status, ''), status),
			home_score = COALESCE(excluded.home_score, home_score),
			away_score = COALESCE(excluded.away_score, away_score),
			match_url = COALESCE(NULLIF(excluded.match_url, ''), match_url),
			updated_at = CURRENT_TIMESTAMP
	`, m.MatchID, m.Season, m.MatchDate, m.MatchTime,
		m.HomeTeam, m.AwayTeam, m.HomeTeamRaw, m.AwayTeamRaw,
		m.Venue, m.Competition, m.Broadcast, m.Status,
		m.HomeScore, m.AwayScore, m.MatchURL)

	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	// Get the inserted ID if this was a new insert
	if m.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			m.ID = id
		} else {
			// On conflict update, fetch the existing ID
			err = s.db.QueryRow("SELECT id FROM schedules WHERE match_id = ?", m.MatchID).Scan(&m.ID)
			if err != nil {
				return fmt.Errorf("failed to get match ID: %w", err)
			}
		}
	}

	return nil
}

// GetMatchByMatchID retrieves a schedule row by its match_id
func (s *Store) GetMatchByMatchID(matchID string) (*Match, error) {
	row := s.db.QueryRow(`
		SELECT `+matchColumns+`
		FROM schedules WHERE match_id = ?
	`, matchID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return m, nil
}

// GetMatches retrieves schedule rows for a season in date order. A zero
// season matches everything.
func (s *Store) GetMatches(season int) ([]*Match, error) {
	query := `SELECT ` + matchColumns + ` FROM schedules`
	var args []any
	if season != 0 {
		query += " WHERE season = ?"
		args = append(args, season)
	}
	query += " ORDER BY match_date, match_time, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// CountMatches returns the total number of schedule rows
func (s *Store) CountMatches() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM schedules").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// CountMatchesByStatus returns row counts grouped by status
func (s *Store) CountMatchesByStatus() (map[string]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM schedules GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan match count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
