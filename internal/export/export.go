// Package export writes snapshot files of the canonical tables for
// downstream consumers. Snapshots are plain column-per-field dumps;
// provenance stays in the database.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

// Supported snapshot formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Exporter writes player and schedule snapshots
type Exporter struct {
	store  *store.Store
	logger *report.EventLogger
}

// Config holds exporter configuration
type Config struct {
	Store  *store.Store
	Logger *report.EventLogger
}

// New creates a new Exporter
func New(cfg *Config) *Exporter {
	return &Exporter{
		store:  cfg.Store,
		logger: cfg.Logger,
	}
}

// Result describes one snapshot run
type Result struct {
	Files   []string
	Players int
	Matches int
}

// WriteSnapshot dumps the player and schedule tables into dir, one file
// per table. A zero season exports everything.
func (e *Exporter) WriteSnapshot(dir, format string, season int) (*Result, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("unknown export format %q (want csv or json)", format)
	}

	players, err := e.store.GetPlayers("", season)
	if err != nil {
		return nil, err
	}
	matches, err := e.store.GetMatches(season)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	res := &Result{Players: len(players), Matches: len(matches)}

	type table struct {
		name  string
		write func(path string) error
		count int
	}
	var tables []table

	switch format {
	case FormatCSV:
		tables = []table{
			{"players.csv", func(p string) error { return writePlayersCSV(p, players) }, len(players)},
			{"schedules.csv", func(p string) error { return writeMatchesCSV(p, matches) }, len(matches)},
		}
	case FormatJSON:
		tables = []table{
			{"players.json", func(p string) error { return writeJSON(p, playerRecords(players)) }, len(players)},
			{"schedules.json", func(p string) error { return writeJSON(p, matchRecords(matches)) }, len(matches)},
		}
	}

	for _, tbl := range tables {
		path := filepath.Join(dir, tbl.name)
		if err := tbl.write(path); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
		e.logger.LogExport(format, path, tbl.count)
		util.InfoLog("Wrote %s (%d records)", path, tbl.count)
	}

	util.SuccessLog("Exported %d player(s) and %d match(es) to %s", res.Players, res.Matches, dir)
	return res, nil
}

var playerHeader = []string{
	"id", "team", "season", "first_name", "last_name",
	"position", "jersey_number", "height_in", "weight_lb",
	"birthdate", "birthplace", "citizenship",
	"hometown_city", "hometown_state",
	"high_school", "high_school_city", "high_school_state",
	"high_school_source_url", "high_school_source_name",
	"headshot_url", "bio_url", "created_at", "updated_at",
}

func playerRow(p *store.Player) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Team,
		strconv.Itoa(p.Season),
		p.FirstName,
		p.LastName,
		p.Position,
		csvInt(p.JerseyNumber),
		csvInt(p.HeightIn),
		csvInt(p.WeightLb),
		p.Birthdate,
		p.Birthplace,
		p.Citizenship,
		p.HometownCity,
		p.HometownState,
		p.HighSchool,
		p.HighSchoolCity,
		p.HighSchoolState,
		p.HighSchoolSourceURL,
		p.HighSchoolSourceName,
		p.HeadshotURL,
		p.BioURL,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	}
}

var matchHeader = []string{
	"id", "match_id", "season", "match_date", "match_time",
	"home_team", "away_team", "home_team_raw", "away_team_raw",
	"venue", "competition", "broadcast", "status",
	"home_score", "away_score", "match_url", "created_at", "updated_at",
}

func matchRow(m *store.Match) []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.MatchID,
		strconv.Itoa(m.Season),
		m.MatchDate,
		m.MatchTime,
		m.HomeTeam,
		m.AwayTeam,
		m.HomeTeamRaw,
		m.AwayTeamRaw,
		m.Venue,
		m.Competition,
		m.Broadcast,
		m.Status,
		csvScore(m.HomeScore),
		csvScore(m.AwayScore),
		m.MatchURL,
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	}
}

func writePlayersCSV(path string, players []*store.Player) error {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, playerRow(p))
	}
	return writeCSV(path, playerHeader, rows)
}

func writeMatchesCSV(path string, matches []*store.Match) error {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow(m))
	}
	return writeCSV(path, matchHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// csvInt renders an int column, leaving unknown (zero) values blank
func csvInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// csvScore renders a score column; negative means not played yet
func csvScore(v int) string {
	if v < 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// playerRecord is the JSON shape of one player row
type playerRecord struct {
	ID                   int64  `json:"id"`
	Team                 string `json:"team"`
	Season               int    `json:"season"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Position             string `json:"position,omitempty"`
	JerseyNumber         int    `json:"jersey_number,omitempty"`
	HeightIn             int    `json:"height_in,omitempty"`
	WeightLb             int    `json:"weight_lb,omitempty"`
	Birthdate            string `json:"birthdate,omitempty"`
	Birthplace           string `json:"birthplace,omitempty"`
	Citizenship          string `json:"citizenship,omitempty"`
	HometownCity         string `json:"hometown_city,omitempty"`
	HometownState        string `json:"hometown_state,omitempty"`
	HighSchool           string `json:"high_school,omitempty"`
	HighSchoolCity       string `json:"high_school_city,omitempty"`
	HighSchoolState      string `json:"high_school_state,omitempty"`
	HighSchoolSourceURL  string `json:"high_school_source_url,omitempty"`
	HighSchoolSourceName string `json:"high_school_source_name,omitempty"`
	HeadshotURL          string `json:"headshot_url,omitempty"`
	BioURL               string `json:"bio_url,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func playerRecords(players []*store.Player) []playerRecord {
	records := make([]playerRecord, 0, len(players))
	for _, p := range players {
		records = append(records, playerRecord{
			ID:                   p.ID,
			Team:                 p.Team,
			Season:               p.Season,
			FirstName:            p.FirstName,
			LastName:             p.LastName,
			Position:             p.Position,
			JerseyNumber:         p.JerseyNumber,
			HeightIn:             p.HeightIn,
			WeightLb:             p.WeightLb,
			Birthdate:            p.Birthdate,
			Birthplace:           p.Birthplace,
			Citizenship:          p.Citizenship,
			HometownCity:         p.HometownCity,
			HometownState:        p.HometownState,
			HighSchool:           p.HighSchool,
			HighSchoolCity:       p.HighSchoolCity,
			HighSchoolState:      p.HighSchoolState,
			HighSchoolSourceURL:  p.HighSchoolSourceURL,
			HighSchoolSourceName: p.HighSchoolSourceName,
			HeadshotURL:          p.HeadshotURL,
			BioURL:               p.BioURL,
			CreatedAt:            p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return records
}

// matchRecord is the JSON shape of one schedule row. Scores are omitted
// until the match has been played.
type matchRecord struct {
	ID          int64  `json:"id"`
	MatchID     string `json:"match_id"`
	Season      int    `json:"season"`
	MatchDate   string `json:"match_date,omitempty"`
	MatchTime   string `json:"match_time,omitempty"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeTeamRaw string `json:"home_team_raw,omitempty"`
	AwayTeamRaw string `json:"away_team_raw,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Competition string `json:"competition,omitempty"`
	Broadcast   string `json:"broadcast,omitempty"`
	Status      string `json:"status"`
	HomeScore   *int   `json:"home_score,omitempty"`
	AwayScore   *int   `json:"away_score,omitempty"`
	MatchURL    string `json:"match_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func matchRecords(matches []*store.Match) []matchRecord {
	records := make([]matchRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, matchRecord{
			ID:          m.ID,
			MatchID:     m.MatchID,
			Season:      m.Season,
			MatchDate:   m.MatchDate,
			MatchTime:   m.MatchTime,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			HomeTeamRaw: m.HomeTeamRaw,
			AwayTeamRaw: m.AwayTeamRaw,
			Venue:       m.Venue,
			Competition: m.Competition,
			Broadcast:   m.Broadcast,
			Status:      m.Status,
			HomeScore:   scorePtr(m.HomeScore),
			AwayScore:   scorePtr(m.AwayScore),
			MatchURL:    m.MatchURL,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func scorePtr(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func writeJSON(path string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
