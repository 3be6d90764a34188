package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// playerColumns is the shared SELECT list for player queries
const playerColumns = `
	id, team, season, first_name, last_name,
	COALESCE(position, ''), COALESCE(jersey_number, 0),
	COALESCE(height_in, 0), COALESCE(weight_lb, 0),
	COALESCE(birthdate, ''), COALESCE(birthplace, ''), COALESCE(citizenship, ''),
	COALESCE(hometown_city, ''), COALESCE(hometown_state, ''),
	COALESCE(high_school, ''), COALESCE(high_school_city, ''), COALESCE(high_school_state, ''),
	COALESCE(high_school_source_url, ''), COALESCE(high_school_source_name, ''),
	COALESCE(headshot_url, ''), COALESCE(bio_url, ''),
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	p := &Player{}
	err := row.Scan(
		&p.ID, &p.Team, &p.Season, &p.FirstName, &p.LastName,
		&p.Position, &p.JerseyNumber,
		&p.HeightIn, &p.WeightLb,
		&p.Birthdate, &p.Birthplace, &p.Citizenship,
		&p.HometownCity, &p.HometownState,
		&p.HighSchool, &p.HighSchoolCity, &p.HighSchoolState,
		&p.HighSchoolSourceURL, &p.HighSchoolSourceName,
		&p.HeadshotURL, &p.BioURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EnsurePlayer inserts a player row for the natural key if none exists and
// returns the current row. The insert-or-get is atomic so concurrent
// observations of the same player cannot create duplicates.
func (s *Store) EnsurePlayer(team string, season int, firstName, lastName string) (*Player, bool, error) {
	result, err := s.db.Exec(`
		INSERT INTO players (team, season, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team, season, first_name, last_name) DO NOTHING
	`, team, season, firstName, lastName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert player: %w", err)
	}

	created := false
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	player, err := s.GetPlayerByNaturalKey(team, season, firstName, lastName)
	if err != nil {
		return nil, false, err
	}
	if player == nil {
		return nil, false, fmt.Errorf("player row missing after insert: %s %s", firstName, lastName)
	}

	return player, created, nil
}

// GetPlayerByNaturalKey retrieves a player by team, season and name
func (s *Store) GetPlayerByNaturalKey(team string, season int, firstName, lastName string) (*Player, error) {
	row := s.db.QueryRow(`
		SELECT `+playerColumns+`
		FROM players
		WHERE team = ? AND season = ? AND first_name = ? AND last_name = ?
	`, team, season, firstName, lastName)

	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

// GetPlayerByID retrieves a player by its ID
func (s *Store) GetPlayerByID(id int64) (*Player, error) {
	row := s.db.QueryRow(`
		SELECT `+playerColumns+`
		FROM players WHERE id = ?
	`, id)

	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

// GetPlayers retrieves players filtered by team and season. An empty team
// or zero season matches everything.
func (s *Store) GetPlayers(team string, season int) ([]*Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE 1=1`
	var args []any
	if team != "" {
		query += " AND team = ?"
		args = append(args, team)
	}
	if season != 0 {
		query += " AND season = ?"
		args = append(args, season)
	}
	query += " ORDER BY team, last_name, first_name"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// GetPlayersMissingHighSchool retrieves players with no high-school value,
// ordered by id for deterministic enrichment passes
func (s *Store) GetPlayersMissingHighSchool(team string, season int) ([]*Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE (high_school IS NULL OR high_school = '')`
	var args []any
	if team != "" {
		query += " AND team = ?"
		args = append(args, team)
	}
	if season != 0 {
		query += " AND season = ?"
		args = append(args, season)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// Fields a gap-fill pass may target, mapped to their columns. Anything
// else is rejected before it reaches SQL.
var fillableFields = map[string]string{
	"birthdate":   "birthdate",
	"birthplace":  "birthplace",
	"citizenship": "citizenship",
}

// GetPlayersMissingField retrieves players with no value for one fillable
// field, ordered by id. A zero limit means no limit.
func (s *Store) GetPlayersMissingField(field, team string, season, limit int) ([]*Player, error) {
	column, ok := fillableFields[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not fillable", field)
	}

	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE (` + column + ` IS NULL OR ` + column + ` = '')`
	var args []any
	if team != "" {
		query += " AND team = ?"
		args = append(args, team)
	}
	if season != 0 {
		query += " AND season = ?"
		args = append(args, season)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// SearchPlayersByName retrieves players whose full name contains the given
// fragment, case-insensitively
func (s *Store) SearchPlayersByName(name string) ([]*Player, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	rows, err := s.db.Query(`
		SELECT `+playerColumns+`
		FROM players
		WHERE LOWER(first_name || ' ' || last_name) LIKE ?
		ORDER BY team, last_name, first_name
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// CountPlayers returns the total number of player rows
func (s *Store) CountPlayers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// CountPlayersWithHighSchool returns the number of players with a
// high-school value
func (s *Store) CountPlayersWithHighSchool() (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM players
		WHERE high_school IS NOT NULL AND high_school != ''
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// ColumnValue is one column write within a field adoption
type ColumnValue struct {
	Column string
	Value  any
}

// FieldUpdate is one field adoption decided by the reconciler. Compound
// fields write several columns under a single provenance entry.
type FieldUpdate struct {
	Field   string
	Source  string
	Rank    int
	Columns []ColumnValue
}

// ApplyPlayerMerge writes a set of adopted fields and their provenance in
// one transaction. Either every column and provenance row lands or none do.
func (s *Store) ApplyPlayerMerge(playerID int64, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		var sets []string
		var args []any
		for _, u := range updates {
			for _, cv := range u.Columns {
				sets = append(sets, cv.Column+" = ?")
				args = append(args, cv.Value)
			}
		}
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, playerID)

		query := "UPDATE players SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to update player fields: %w", err)
		}

		for _, u := range updates {
			if err := upsertFieldSourceTx(tx, playerID, u.Field, u.Source, u.Rank); err != nil {
				return err
			}
		}

		return nil
	})
}
