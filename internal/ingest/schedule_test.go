package ingest

import (
	"testing"
)

func TestParseSchedulePageCards(t *testing.T) {
	html := []byte(`<html><body>
		<div class="MatchCard">
			<div>Sat, March 14, 2026</div>
			<div>7:30 PM CT</div>
			<div>Chicago Fire FC</div>
			<div>LA Galaxy</div>
			<div>Soldier Field</div>
		</div>
		<div class="MatchCard">
			<div>March 21, 2026</div>
			<div>Columbus Crew</div>
			<div>Chicago Fire FC</div>
			<div>FT</div>
			<div>2 - 1</div>
		</div>
	</body></html>`)

	team := &Team{Name: "Chicago Fire FC", Slug: "chicago-fire"}
	obs, err := ParseSchedulePage(html, team, 2026)
	if err != nil {
		t.Fatalf("ParseSchedulePage failed: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(obs))
	}

	upcoming := obs[0]
	if upcoming.MatchID != "CHI-LAG-2026-03-14" {
		t.Errorf("Unexpected match id %q", upcoming.MatchID)
	}
	if upcoming.HomeTeam != "Chicago Fire FC" || upcoming.AwayTeam != "LA Galaxy" {
		t.Errorf("Unexpected teams %q vs %q", upcoming.HomeTeam, upcoming.AwayTeam)
	}
	if upcoming.MatchDate != "2026-03-14" {
		t.Errorf("Unexpected date %q", upcoming.MatchDate)
	}
	if upcoming.MatchTime != "7:30 PM" {
		t.Errorf("Unexpected time %q", upcoming.MatchTime)
	}
	if upcoming.Status != "scheduled" {
		t.Errorf("Unexpected status %q", upcoming.Status)
	}
	if upcoming.HomeScore != -1 || upcoming.AwayScore != -1 {
		t.Errorf("Unplayed match should have -1 scores, got %d/%d", upcoming.HomeScore, upcoming.AwayScore)
	}

	final := obs[1]
	if final.MatchID != "COL-CHI-2026-03-21" {
		t.Errorf("Unexpected match id %q", final.MatchID)
	}
	if final.Status != "final" {
		t.Errorf("Expected final, got %q", final.Status)
	}
	if final.HomeScore != 2 || final.AwayScore != 1 {
		t.Errorf("Expected 2-1, got %d-%d", final.HomeScore, final.AwayScore)
	}
}

func TestParseSchedulePageRows(t *testing.T) {
	html := []byte(`<html><body>
		<table class="schedule-table">
			<tr class="match-row">
				<td>Mar 14, 2026</td>
				<td>vs. LA Galaxy</td>
				<td>7:30 PM</td>
			</tr>
			<tr class="match-row">
				<td>Mar 21, 2026</td>
				<td>@ Columbus Crew</td>
				<td>4:00 PM</td>
			</tr>
		</table>
	</body></html>`)

	team := &Team{Name: "Chicago Fire FC", Slug: "chicago-fire"}
	obs, err := ParseSchedulePage(html, team, 2026)
	if err != nil {
		t.Fatalf("ParseSchedulePage failed: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(obs))
	}

	home := obs[0]
	if home.HomeTeam != "Chicago Fire FC" || home.AwayTeam != "LA Galaxy" {
		t.Errorf("vs row should put the team at home, got %q vs %q", home.HomeTeam, home.AwayTeam)
	}
	if home.MatchID != "CHI-LAG-2026-03-14" {
		t.Errorf("Unexpected match id %q", home.MatchID)
	}

	away := obs[1]
	if away.HomeTeam != "Columbus Crew" || away.AwayTeam != "Chicago Fire FC" {
		t.Errorf("@ row should put the team away, got %q vs %q", away.HomeTeam, away.AwayTeam)
	}
	if away.MatchID != "COL-CHI-2026-03-21" {
		t.Errorf("Unexpected match id %q", away.MatchID)
	}
}

func TestParseSchedulePagePostponed(t *testing.T) {
	html := []byte(`<html><body>
		<div class="match-card">
			<div>March 14, 2026</div>
			<div>Chicago Fire FC</div>
			<div>Seattle Sounders FC</div>
			<div>Postponed</div>
		</div>
	</body></html>`)

	obs, err := ParseSchedulePage(html, nil, 2026)
	if err != nil {
		t.Fatalf("ParseSchedulePage failed: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(obs))
	}
	if obs[0].Status != "postponed" {
		t.Errorf("Expected postponed, got %q", obs[0].Status)
	}
}

func TestParseSchedulePageDuplicateCards(t *testing.T) {
	// The same fixture rendered twice resolves to one observation
	html := []byte(`<html><body>
		<div class="fixture">
			<div>March 14, 2026</div>
			<div>Chicago Fire FC</div>
			<div>LA Galaxy</div>
		</div>
		<div class="fixture">
			<div>March 14, 2026</div>
			<div>Chicago Fire FC</div>
			<div>LA Galaxy</div>
		</div>
	</body></html>`)

	obs, err := ParseSchedulePage(html, nil, 2026)
	if err != nil {
		t.Fatalf("ParseSchedulePage failed: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("Expected deduplication to 1 match, got %d", len(obs))
	}
}

func TestParseSchedulePageUnparseableDate(t *testing.T) {
	// A two-digit year cannot be normalized, so the match has no key.
	// The reconciler reports it; the parser just passes it through.
	html := []byte(`<html><body>
		<div class="game-card">
			<div>3/14/26</div>
			<div>Chicago Fire FC</div>
			<div>LA Galaxy</div>
		</div>
	</body></html>`)

	obs, err := ParseSchedulePage(html, nil, 2026)
	if err != nil {
		t.Fatalf("ParseSchedulePage failed: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("Expected 1 observation, got %d", len(obs))
	}
	if obs[0].MatchID != "" {
		t.Errorf("Expected empty match id, got %q", obs[0].MatchID)
	}
	if obs[0].MatchDate != "" {
		t.Errorf("Expected empty date, got %q", obs[0].MatchDate)
	}
}

func TestDeriveMatchID(t *testing.T) {
	tests := []struct {
		home, away, date string
		expected         string
	}{
		{"Chicago Fire FC", "LA Galaxy", "2026-03-14", "CHI-LAG-2026-03-14"},
		{"St. Louis City SC", "Columbus Crew", "2026-05-02", "STL-COL-2026-05-02"},
		{"FC Cincinnati", "Orlando City", "2026-07-19", "FCC-ORL-2026-07-19"},

		// Missing pieces never produce a partial key
		{"", "LA Galaxy", "2026-03-14", ""},
		{"Chicago Fire FC", "LA Galaxy", "", ""},
	}

	for _, tt := range tests {
		if got := DeriveMatchID(tt.home, tt.away, tt.date); got != tt.expected {
			t.Errorf("DeriveMatchID(%q, %q, %q) = %q, expected %q",
				tt.home, tt.away, tt.date, got, tt.expected)
		}
	}
}
