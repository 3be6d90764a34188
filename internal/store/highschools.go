package store

import (
	"database/sql"
	"fmt"
)

const refColumns = `
	id, raw_name, normalized_name,
	COALESCE(canonical_name, ''), COALESCE(city, ''), COALESCE(state, ''),
	COALESCE(catalog_id, ''), match_status, COALESCE(confidence, 0),
	created_at, updated_at`

func scanRef(row rowScanner) (*HighSchoolRef, error) {
	r := &HighSchoolRef{}
	err := row.Scan(
		&r.ID, &r.RawName, &r.NormalizedName,
		&r.CanonicalName, &r.City, &r.State,
		&r.CatalogID, &r.MatchStatus, &r.Confidence,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// EnsureHighSchoolRef inserts a reference entry for the raw name if none
// exists and returns the current row. Atomic, so the same raw spelling can
// never produce two entries.
func (s *Store) EnsureHighSchoolRef(ref *HighSchoolRef) (*HighSchoolRef, bool, error) {
	result, err := s.db.Exec(`
		INSERT INTO high_schools (raw_name, normalized_name, canonical_name, city, state, catalog_id, match_status, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(raw_name) DO NOTHING
	`, ref.RawName, ref.NormalizedName, ref.CanonicalName, ref.City, ref.State,
		ref.CatalogID, ref.MatchStatus, ref.Confidence)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert high school ref: %w", err)
	}

	created := false
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	existing, err := s.GetHighSchoolRefByRawName(ref.RawName)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("high school ref missing after insert: %s", ref.RawName)
	}

	return existing, created, nil
}

// GetHighSchoolRefByRawName retrieves a reference entry by its exact raw name
func (s *Store) GetHighSchoolRefByRawName(rawName string) (*HighSchoolRef, error) {
	row := s.db.QueryRow(`
		SELECT `+refColumns+`
		FROM high_schools WHERE raw_name = ?
	`, rawName)

	r, err := scanRef(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get high school ref: %w", err)
	}

	return r, nil
}

// GetHighSchoolRefByNormalized retrieves the oldest reference entry with
// the given normalized name. Oldest wins so repeated lookups are stable.
func (s *Store) GetHighSchoolRefByNormalized(normalized string) (*HighSchoolRef, error) {
	row := s.db.QueryRow(`
		SELECT `+refColumns+`
		FROM high_schools WHERE normalized_name = ?
		ORDER BY id LIMIT 1
	`, normalized)

	r, err := scanRef(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get high school ref: %w", err)
	}

	return r, nil
}

// GetAllHighSchoolRefs retrieves every reference entry in id order
func (s *Store) GetAllHighSchoolRefs() ([]*HighSchoolRef, error) {
	rows, err := s.db.Query(`
		SELECT ` + refColumns + `
		FROM high_schools ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query high school refs: %w", err)
	}
	defer rows.Close()

	var refs []*HighSchoolRef
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan high school ref: %w", err)
		}
		refs = append(refs, r)
	}

	return refs, rows.Err()
}

// GetHighSchoolRefsByStatus retrieves reference entries with a given match
// status in id order
func (s *Store) GetHighSchoolRefsByStatus(status string) ([]*HighSchoolRef, error) {
	rows, err := s.db.Query(`
		SELECT `+refColumns+`
		FROM high_schools WHERE match_status = ?
		ORDER BY id
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query high school refs: %w", err)
	}
	defer rows.Close()

	var refs []*HighSchoolRef
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan high school ref: %w", err)
		}
		refs = append(refs, r)
	}

	return refs, rows.Err()
}

// UpdateHighSchoolRefMatch records the outcome of a resolution attempt
func (s *Store) UpdateHighSchoolRefMatch(id int64, canonicalName, catalogID, status string, confidence float64) error {
	_, err := s.db.Exec(`
		UPDATE high_schools
		SET canonical_name = ?, catalog_id = ?, match_status = ?, confidence = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, canonicalName, catalogID, status, confidence, id)
	if err != nil {
		return fmt.Errorf("failed to update high school ref: %w", err)
	}
	return nil
}

// CountHighSchoolRefsByStatus returns reference entry counts grouped by
// match status
func (s *Store) CountHighSchoolRefsByStatus() (map[string]int, error) {
	rows, err := s.db.Query("SELECT match_status, COUNT(*) FROM high_schools GROUP BY match_status")
	if err != nil {
		return nil, fmt.Errorf("failed to count high school refs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ref count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
