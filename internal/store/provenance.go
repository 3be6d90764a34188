package store

import (
	"database/sql"
	"fmt"
)

// GetFieldSources retrieves the provenance entries for a player, keyed by
// field name. Fields with no entry are simply absent from the map.
func (s *Store) GetFieldSources(playerID int64) (map[string]*FieldSource, error) {
	rows, err := s.db.Query(`
		SELECT player_id, field, source, rank, updated_at
		FROM field_sources WHERE player_id = ?
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field sources: %w", err)
	}
	defer rows.Close()

	sources := make(map[string]*FieldSource)
	for rows.Next() {
		fs := &FieldSource{}
		err := rows.Scan(&fs.PlayerID, &fs.Field, &fs.Source, &fs.Rank, &fs.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field source: %w", err)
		}
		sources[fs.Field] = fs
	}

	return sources, rows.Err()
}

// upsertFieldSourceTx records which source supplied a field, replacing any
// previous attribution for that field
func upsertFieldSourceTx(tx *sql.Tx, playerID int64, field, source string, rank int) error {
	_, err := tx.Exec(`
		INSERT INTO field_sources (player_id, field, source, rank)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id, field) DO UPDATE SET
			source = excluded.source,
			rank = excluded.rank,
			updated_at = CURRENT_TIMESTAMP
	`, playerID, field, source, rank)
	if err != nil {
		return fmt.Errorf("failed to upsert field source: %w", err)
	}
	return nil
}

// CountFieldsBySource returns how many field attributions each source holds
func (s *Store) CountFieldsBySource() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT source, COUNT(*) FROM field_sources GROUP BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query field sources: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan field source count: %w", err)
		}
		counts[source] = count
	}

	return counts, rows.Err()
}
