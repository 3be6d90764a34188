package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/roster-scout/internal/store"
)

func newExportTestStore(t *testing.T, name string) *store.Store {
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

func seedExportStore(t *testing.T, st *store.Store) {
	t.Helper()

	if _, _, err := st.EnsurePlayer("Chicago Fire FC", 2026, "Jane", "Doe"); err != nil {
		t.Fatalf("EnsurePlayer failed: %v", err)
	}
	jane, err := st.GetPlayerByNaturalKey("Chicago Fire FC", 2026, "Jane", "Doe")
	if err != nil {
		t.Fatalf("GetPlayerByNaturalKey failed: %v", err)
	}
	err = st.ApplyPlayerMerge(jane.ID, []store.FieldUpdate{{
		Field: "position", Source: "club_site", Rank: 90,
		Columns: []store.ColumnValue{{Column: "position", Value: "Midfielder"}},
	}})
	if err != nil {
		t.Fatalf("ApplyPlayerMerge failed: %v", err)
	}

	if _, _, err := st.EnsurePlayer("Chicago Fire FC", 2026, "John", "Roe"); err != nil {
		t.Fatalf("EnsurePlayer failed: %v", err)
	}

	matches := []*store.Match{
		{MatchID: "CHI-AUS-2026-03-08", Season: 2026, MatchDate: "2026-03-08",
			HomeTeam: "Chicago Fire FC", AwayTeam: "Austin FC",
			Status: "final", HomeScore: 2, AwayScore: 1},
		{MatchID: "CHI-COL-2026-08-30", Season: 2026, MatchDate: "2026-08-30",
			HomeTeam: "Chicago Fire FC", AwayTeam: "Columbus Crew",
			Status: "scheduled", HomeScore: -1, AwayScore: -1},
	}
	for _, m := range matches {
		if err := st.UpsertMatch(m); err != nil {
			t.Fatalf("UpsertMatch failed: %v", err)
		}
	}
}

func TestWriteSnapshotCSV(t *testing.T) {
	st := newExportTestStore(t, "test-export-csv.db")
	seedExportStore(t, st)

	dir := t.TempDir()
	exp := New(&Config{Store: st})

	res, err := exp.WriteSnapshot(dir, FormatCSV, 0)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	if res.Players != 2 || res.Matches != 2 {
		t.Errorf("result = %+v, want 2 players and 2 matches", res)
	}
	if len(res.Files) != 2 {
		t.Fatalf("got %d files %v, want 2", len(res.Files), res.Files)
	}

	f, err := os.Open(filepath.Join(dir, "players.csv"))
	if err != nil {
		t.Fatalf("players.csv missing: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read players.csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("players.csv has %d rows, want header + 2", len(records))
	}
	if records[0][0] != "id" || records[0][4] != "last_name" {
		t.Errorf("header = %v", records[0])
	}

	// Ordered by team then last name: Doe before Roe
	if records[1][4] != "Doe" || records[2][4] != "Roe" {
		t.Errorf("row order = %q, %q", records[1][4], records[2][4])
	}
	if records[1][5] != "Midfielder" {
		t.Errorf("Doe position = %q", records[1][5])
	}
	if records[2][5] != "" {
		t.Errorf("Roe position = %q, want blank", records[2][5])
	}
}

func TestWriteSnapshotCSVSchedules(t *testing.T) {
	st := newExportTestStore(t, "test-export-csv-sched.db")
	seedExportStore(t, st)

	dir := t.TempDir()
	if _, err := New(&Config{Store: st}).WriteSnapshot(dir, FormatCSV, 0); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "schedules.csv"))
	if err != nil {
		t.Fatalf("schedules.csv missing: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read schedules.csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("schedules.csv has %d rows, want header + 2", len(records))
	}

	// Date order puts the played match first
	if records[1][1] != "CHI-AUS-2026-03-08" {
		t.Errorf("first match = %q", records[1][1])
	}
	if records[1][13] != "2" || records[1][14] != "1" {
		t.Errorf("played score = %q-%q", records[1][13], records[1][14])
	}
	if records[2][13] != "" {
		t.Errorf("unplayed home score = %q, want blank", records[2][13])
	}
}

func TestWriteSnapshotJSON(t *testing.T) {
	st := newExportTestStore(t, "test-export-json.db")
	seedExportStore(t, st)

	dir := t.TempDir()
	res, err := New(&Config{Store: st}).WriteSnapshot(dir, FormatJSON, 0)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	if res.Players != 2 {
		t.Errorf("Players = %d, want 2", res.Players)
	}

	data, err := os.ReadFile(filepath.Join(dir, "players.json"))
	if err != nil {
		t.Fatalf("players.json missing: %v", err)
	}
	var players []playerRecord
	if err := json.Unmarshal(data, &players); err != nil {
		t.Fatalf("failed to decode players.json: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players", len(players))
	}
	if players[0].LastName != "Doe" || players[0].Position != "Midfielder" {
		t.Errorf("players[0] = %+v", players[0])
	}

	data, err = os.ReadFile(filepath.Join(dir, "schedules.json"))
	if err != nil {
		t.Fatalf("schedules.json missing: %v", err)
	}
	var schedules []matchRecord
	if err := json.Unmarshal(data, &schedules); err != nil {
		t.Fatalf("failed to decode schedules.json: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("got %d matches", len(schedules))
	}
	if schedules[0].HomeScore == nil || *schedules[0].HomeScore != 2 {
		t.Errorf("played match score = %v", schedules[0].HomeScore)
	}
	if schedules[1].HomeScore != nil {
		t.Errorf("unplayed match score = %v, want omitted", *schedules[1].HomeScore)
	}
}

func TestWriteSnapshotUnknownFormat(t *testing.T) {
	st := newExportTestStore(t, "test-export-badformat.db")

	_, err := New(&Config{Store: st}).WriteSnapshot(t.TempDir(), "xlsx", 0)
	if err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if !strings.Contains(err.Error(), "unknown export format") {
		t.Errorf("error = %v", err)
	}
}

func TestWriteSnapshotEmptyStore(t *testing.T) {
	st := newExportTestStore(t, "test-export-empty.db")

	dir := t.TempDir()
	res, err := New(&Config{Store: st}).WriteSnapshot(dir, FormatJSON, 0)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	if res.Players != 0 || res.Matches != 0 {
		t.Errorf("result = %+v, want empty", res)
	}

	// Empty tables still produce valid files
	data, err := os.ReadFile(filepath.Join(dir, "players.json"))
	if err != nil {
		t.Fatalf("players.json missing: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("players.json = %q, want an empty array", data)
	}
}

func TestWriteSnapshotSeasonFilter(t *testing.T) {
	st := newExportTestStore(t, "test-export-season.db")
	seedExportStore(t, st)

	res, err := New(&Config{Store: st}).WriteSnapshot(t.TempDir(), FormatCSV, 2024)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	if res.Players != 0 || res.Matches != 0 {
		t.Errorf("result = %+v, want nothing for an unseen season", res)
	}
}
