package reconcile

import (
	"fmt"

	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

// Reconciler merges normalized observations into the canonical store under
// per-field source precedence. Winning is rank-gated, not time-gated:
// re-running a low-rank scraper can never clobber what a higher-rank
// source already wrote.
type Reconciler struct {
	store  *store.Store
	logger *report.EventLogger
	policy *Policy
}

// Config holds reconciler configuration
type Config struct {
	Store  *store.Store
	Logger *report.EventLogger
	Policy *Policy
}

// New creates a new Reconciler
func New(cfg *Config) *Reconciler {
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Reconciler{
		store:  cfg.Store,
		logger: cfg.Logger,
		policy: policy,
	}
}

// PlayerResult describes the outcome of one player merge
type PlayerResult struct {
	PlayerID int64
	Created  bool
	Adopted  []string
	Skipped  []string
}

// Player merges one observation into the canonical player table.
//
// Every observed field follows the same rule: an empty field adopts the
// value unconditionally; an occupied field is displaced only by a source
// of strictly greater rank than the one that wrote it. Equal rank keeps
// the first write, so reconciling the identical observation twice is a
// no-op. A value with no provenance row (either pre-provenance data or an
// empty field) counts as rank -1 and loses to any source.
//
// Integrity violations abort this record before anything is written;
// other records in the batch are unaffected.
func (r *Reconciler) Player(obs *PlayerObservation) (*PlayerResult, error) {
	if obs.Team == "" || obs.Season == 0 || (obs.FirstName == "" && obs.LastName == "") {
		return nil, fmt.Errorf("%w: observation missing natural key (team=%q season=%d name=%q %q)",
			util.ErrIntegrity, obs.Team, obs.Season, obs.FirstName, obs.LastName)
	}

	// Validate the compound claim before any write happens
	if obs.HighSchool != nil {
		if err := obs.HighSchool.Validate(); err != nil {
			r.logger.LogConflict(obs.FirstName+" "+obs.LastName, obs.Team, err.Error())
			return nil, err
		}
	}

	player, created, err := r.store.EnsurePlayer(obs.Team, obs.Season, obs.FirstName, obs.LastName)
	if err != nil {
		return nil, err
	}

	sources, err := r.store.GetFieldSources(player.ID)
	if err != nil {
		return nil, err
	}

	rank := r.policy.Rank(obs.Source)
	result := &PlayerResult{PlayerID: player.ID, Created: created}
	var updates []store.FieldUpdate

	stringFields := []struct {
		name     string
		observed string
		current  string
	}{
		{"position", obs.Position, player.Position},
		{"birthdate", obs.Birthdate, player.Birthdate},
		{"birthplace", obs.Birthplace, player.Birthplace},
		{"citizenship", obs.Citizenship, player.Citizenship},
		{"hometown_city", obs.HometownCity, player.HometownCity},
		{"hometown_state", obs.HometownState, player.HometownState},
		{"headshot_url", obs.HeadshotURL, player.HeadshotURL},
		{"bio_url", obs.BioURL, player.BioURL},
	}
	for _, f := range stringFields {
		if f.observed == "" {
			continue
		}
		if rank > r.recordedRank(sources, f.name, f.current != "") {
			updates = append(updates, store.FieldUpdate{
				Field:   f.name,
				Source:  obs.Source,
				Rank:    rank,
				Columns: []store.ColumnValue{{Column: f.name, Value: f.observed}},
			})
			result.Adopted = append(result.Adopted, f.name)
		} else {
			result.Skipped = append(result.Skipped, f.name)
		}
	}

	intFields := []struct {
		name     string
		observed int
		current  int
	}{
		{"jersey_number", obs.JerseyNumber, player.JerseyNumber},
		{"height_in", obs.HeightIn, player.HeightIn},
		{"weight_lb", obs.WeightLb, player.WeightLb},
	}
	for _, f := range intFields {
		if f.observed == 0 {
			continue
		}
		if rank > r.recordedRank(sources, f.name, f.current != 0) {
			updates = append(updates, store.FieldUpdate{
				Field:   f.name,
				Source:  obs.Source,
				Rank:    rank,
				Columns: []store.ColumnValue{{Column: f.name, Value: f.observed}},
			})
			result.Adopted = append(result.Adopted, f.name)
		} else {
			result.Skipped = append(result.Skipped, f.name)
		}
	}

	// The high-school claim is one compound field: five columns, one
	// provenance entry, adopted or skipped as a unit
	if obs.HighSchool != nil {
		hs := obs.HighSchool
		if rank > r.recordedRank(sources, "high_school", player.HighSchool != "") {
			updates = append(updates, store.FieldUpdate{
				Field:  "high_school",
				Source: obs.Source,
				Rank:   rank,
				Columns: []store.ColumnValue{
					{Column: "high_school", Value: hs.Name},
					{Column: "high_school_city", Value: hs.City},
					{Column: "high_school_state", Value: hs.State},
					{Column: "high_school_source_url", Value: hs.SourceURL},
					{Column: "high_school_source_name", Value: hs.SourceName},
				},
			})
			result.Adopted = append(result.Adopted, "high_school")
		} else {
			result.Skipped = append(result.Skipped, "high_school")
		}
	}

	if err := r.store.ApplyPlayerMerge(player.ID, updates); err != nil {
		return nil, err
	}

	r.logger.LogPlayerMerge(player.FullName(), obs.Team, obs.Source, created, result.Adopted)
	return result, nil
}

// recordedRank returns the rank guarding a field's current value.
// An empty field, or an occupied one with no provenance row, ranks -1 and
// is adoptable by any source including unknown ones at rank 0.
func (r *Reconciler) recordedRank(sources map[string]*store.FieldSource, field string, occupied bool) int {
	if !occupied {
		return -1
	}
	if fs, ok := sources[field]; ok {
		return fs.Rank
	}
	return -1
}

// ScheduleResult describes the outcome of one schedule merge
type ScheduleResult struct {
	MatchID string
	Created bool
}

// Schedule merges one match observation, keyed by match_id. Unlike player
// fields, schedule rows have a single feed per deployment, so updates are
// plain last-writer upserts with empty values never displacing known ones.
func (r *Reconciler) Schedule(obs *MatchObservation) (*ScheduleResult, error) {
	if obs.MatchID == "" {
		return nil, fmt.Errorf("%w: match observation without an id (%s vs %s on %s)",
			util.ErrIntegrity, obs.HomeTeam, obs.AwayTeam, obs.MatchDate)
	}

	existing, err := r.store.GetMatchByMatchID(obs.MatchID)
	if err != nil {
		return nil, err
	}

	match := &store.Match{
		MatchID:     obs.MatchID,
		Season:      obs.Season,
		MatchDate:   obs.MatchDate,
		MatchTime:   obs.MatchTime,
		HomeTeam:    obs.HomeTeam,
		AwayTeam:    obs.AwayTeam,
		HomeTeamRaw: obs.HomeTeamRaw,
		AwayTeamRaw: obs.AwayTeamRaw,
		Venue:       obs.Venue,
		Competition: obs.Competition,
		Broadcast:   obs.Broadcast,
		Status:      obs.Status,
		HomeScore:   obs.HomeScore,
		AwayScore:   obs.AwayScore,
		MatchURL:    obs.MatchURL,
	}
	if err := r.store.UpsertMatch(match); err != nil {
		return nil, err
	}

	created := existing == nil
	r.logger.LogScheduleMerge(obs.MatchID, obs.Source, created)
	return &ScheduleResult{MatchID: obs.MatchID, Created: created}, nil
}
