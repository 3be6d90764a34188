package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/roster-scout/internal/store"
)

func TestGenerateSummaryReport(t *testing.T) {
	// Create temporary database
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Insert test data
	setupTestData(t, db)

	// Generate report
	report, err := GenerateSummaryReport(db, "test-events.jsonl")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	// Verify statistics
	if report.PlayersTracked != 3 {
		t.Errorf("Expected 3 players tracked, got %d", report.PlayersTracked)
	}
	if report.PlayersWithSchool != 1 {
		t.Errorf("Expected 1 player with high school, got %d", report.PlayersWithSchool)
	}
	if report.MatchesTracked != 2 {
		t.Errorf("Expected 2 matches tracked, got %d", report.MatchesTracked)
	}
	if report.SchoolsByStatus["pending"] != 1 {
		t.Errorf("Expected 1 pending school, got %d", report.SchoolsByStatus["pending"])
	}
	if report.ScrapeAttempts != 2 {
		t.Errorf("Expected 2 scrape attempts, got %d", report.ScrapeAttempts)
	}
	if len(report.RecentFailures) != 1 {
		t.Errorf("Expected 1 recent failure, got %d", len(report.RecentFailures))
	}
	if report.EventLogPath != "test-events.jsonl" {
		t.Errorf("Expected event log path 'test-events.jsonl', got '%s'", report.EventLogPath)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "summary.md")

	// Create a test report
	report := &SummaryReport{
		GeneratedAt:       time.Now(),
		PlayersTracked:    30,
		PlayersWithSchool: 12,
		MatchesTracked:    34,
		ScrapeAttempts:    56,
		Season:            2026,
		DatabasePath:      "/test/rsc-state.db",
		EventLogPath:      "/test/events.jsonl",
		MatchesByStatus: map[string]int{
			"scheduled": 30,
			"final":     4,
		},
		SchoolsByStatus: map[string]int{
			"matched":   8,
			"pending":   3,
			"ambiguous": 2,
		},
		FieldsBySource: map[string]int{
			"club_site": 120,
			"wikipedia": 45,
		},
		SourceStats: []*store.SourceStat{
			{Source: "club_site", Attempts: 40, Success: 38, Errors: 2, Records: 900},
			{Source: "wikipedia", Attempts: 16, Success: 14, Warnings: 1, Errors: 1, Records: 60},
		},
		RecentFailures: []FailureInfo{
			{Source: "wikipedia", URL: "https://en.wikipedia.org/wiki/Some_Player", Error: "page not found"},
		},
	}

	// Write report
	err := WriteMarkdownReport(report, outputPath)
	if err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Fatalf("Report file was not created at %s", outputPath)
	}

	// Read and verify content
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}

	contentStr := string(content)

	// Verify headers
	if !strings.Contains(contentStr, "# Roster Scout - Summary Report") {
		t.Error("Report missing main header")
	}
	if !strings.Contains(contentStr, "## 📊 Overview") {
		t.Error("Report missing Overview section")
	}
	if !strings.Contains(contentStr, "## 📅 Schedule") {
		t.Error("Report missing Schedule section")
	}
	if !strings.Contains(contentStr, "## 🏫 School Matching") {
		t.Error("Report missing School Matching section")
	}
	if !strings.Contains(contentStr, "## 🌐 Sources") {
		t.Error("Report missing Sources section")
	}
	if !strings.Contains(contentStr, "## ⚠️ Recent Failures") {
		t.Error("Report missing Recent Failures section")
	}

	// Verify statistics are present
	if !strings.Contains(contentStr, "40.0%") { // 12 of 30 with a high school
		t.Error("Report missing coverage percentage")
	}
	if !strings.Contains(contentStr, "| scheduled | 30 |") {
		t.Error("Report missing schedule status row")
	}
	if !strings.Contains(contentStr, "2 school name(s) need review") {
		t.Error("Report missing ambiguous school warning")
	}

	// Verify failure details
	if !strings.Contains(contentStr, "page not found") {
		t.Error("Report missing failure error message")
	}

	// Verify database path and season
	if !strings.Contains(contentStr, "/test/rsc-state.db") {
		t.Error("Report missing database path")
	}
	if !strings.Contains(contentStr, "**Season:** 2026") {
		t.Error("Report missing season")
	}
}

func TestSortedByCount(t *testing.T) {
	counts := map[string]int{
		"club_site": 120,
		"wikipedia": 45,
		"ncsa":      45,
		"unknown":   1,
	}

	keys := sortedByCount(counts)

	if len(keys) != 4 {
		t.Fatalf("Expected 4 keys, got %d", len(keys))
	}
	if keys[0] != "club_site" {
		t.Errorf("Expected club_site first, got %s", keys[0])
	}
	// Ties break alphabetically
	if keys[1] != "ncsa" || keys[2] != "wikipedia" {
		t.Errorf("Expected tie broken by name, got %v", keys)
	}
	if keys[3] != "unknown" {
		t.Errorf("Expected unknown last, got %s", keys[3])
	}
}

func TestTruncateURL(t *testing.T) {
	testCases := []struct {
		name   string
		url    string
		maxLen int
	}{
		{
			name:   "Short URL - no truncation",
			url:    "https://example.com/roster",
			maxLen: 50,
		},
		{
			name:   "Long URL - truncate middle",
			url:    "https://www.chicagofirefc.com/news/some/extremely/deep/path/to/an/announcement",
			maxLen: 30,
		},
		{
			name:   "Exactly at limit",
			url:    "https://a.com/xy",
			maxLen: 16,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := truncateURL(tc.url, tc.maxLen)

			// Verify length constraint
			if len(result) > tc.maxLen {
				t.Errorf("Result length %d exceeds maxLen %d", len(result), tc.maxLen)
			}

			// Verify result contains "..." if truncated
			if len(tc.url) > tc.maxLen && !strings.Contains(result, "...") {
				t.Error("Expected truncated URL to contain '...'")
			}

			// Verify no truncation for short URLs
			if len(tc.url) <= tc.maxLen && result != tc.url {
				t.Errorf("Short URL should not be truncated: expected '%s', got '%s'", tc.url, result)
			}
		})
	}
}

func TestMarkdownReportStructure(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "summary.md")

	// Minimal report
	report := &SummaryReport{
		GeneratedAt:    time.Now(),
		PlayersTracked: 10,
		MatchesTracked: 5,
	}

	err := WriteMarkdownReport(report, outputPath)
	if err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, _ := os.ReadFile(outputPath)
	contentStr := string(content)

	// Verify Markdown structure
	lines := strings.Split(contentStr, "\n")

	// Check for headers (should start with #)
	headerCount := 0
	tableCount := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			headerCount++
		}
		if strings.Contains(line, "|") {
			tableCount++
		}
	}

	if headerCount < 2 {
		t.Errorf("Expected at least 2 headers, got %d", headerCount)
	}
	if tableCount < 3 {
		t.Errorf("Expected at least 3 table rows, got %d", tableCount)
	}

	// Verify footer
	if !strings.Contains(contentStr, "Generated by") {
		t.Error("Report missing footer")
	}
}

func TestReportWithEmptyData(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Generate report from empty database
	report, err := GenerateSummaryReport(db, "")
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	// Should not crash with empty data
	if report.PlayersTracked != 0 {
		t.Errorf("Expected 0 players tracked for empty DB, got %d", report.PlayersTracked)
	}

	// Write report should work even with empty data
	outputPath := filepath.Join(tmpDir, "empty-summary.md")
	err = WriteMarkdownReport(report, outputPath)
	if err != nil {
		t.Fatalf("WriteMarkdownReport failed on empty data: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Error("Report file was not created for empty data")
	}
}

// setupTestData creates a complete test dataset
func setupTestData(t *testing.T, db *store.Store) {
	// Insert players, one with a high school
	names := []struct {
		first, last string
	}{
		{"Christopher", "Cupps"},
		{"Jane", "Doe"},
		{"John", "Roe"},
	}
	for _, n := range names {
		player, _, err := db.EnsurePlayer("Chicago Fire FC", 2026, n.first, n.last)
		if err != nil {
			t.Fatalf("Failed to insert player: %v", err)
		}

		if n.last == "Cupps" {
			err := db.ApplyPlayerMerge(player.ID, []store.FieldUpdate{
				{
					Field:  "high_school",
					Source: "club_announcement",
					Rank:   70,
					Columns: []store.ColumnValue{
						{Column: "high_school", Value: "Walter Payton College Prep"},
						{Column: "high_school_city", Value: "Chicago"},
						{Column: "high_school_state", Value: "IL"},
						{Column: "high_school_source_url", Value: "https://example.com/announce"},
						{Column: "high_school_source_name", Value: "Club Signing Announcement"},
					},
				},
			})
			if err != nil {
				t.Fatalf("Failed to apply merge: %v", err)
			}
		}
	}

	// Insert matches
	matches := []*store.Match{
		{MatchID: "CHI-STL-2026-03-14", Season: 2026, MatchDate: "2026-03-14", HomeTeam: "Chicago Fire FC", AwayTeam: "St. Louis City SC", Status: "scheduled", HomeScore: -1, AwayScore: -1},
		{MatchID: "MIA-CHI-2026-03-21", Season: 2026, MatchDate: "2026-03-21", HomeTeam: "Inter Miami CF", AwayTeam: "Chicago Fire FC", Status: "scheduled", HomeScore: -1, AwayScore: -1},
	}
	for _, m := range matches {
		if err := db.UpsertMatch(m); err != nil {
			t.Fatalf("Failed to insert match: %v", err)
		}
	}

	// Insert a pending school reference
	_, _, err := db.EnsureHighSchoolRef(&store.HighSchoolRef{
		RawName:        "Walter Payton College Prep",
		NormalizedName: "walter payton",
		MatchStatus:    "pending",
	})
	if err != nil {
		t.Fatalf("Failed to insert school ref: %v", err)
	}

	// Insert scrape attempts, one failed
	attempts := []*store.ScrapeAttempt{
		{RunID: "run-1", Source: "club_site", TeamSlug: "chicago-fire-fc", URL: "https://example.com/roster", Status: "success", RecordsFound: 30},
		{RunID: "run-1", Source: "wikipedia", TeamSlug: "chicago-fire-fc", URL: "https://en.wikipedia.org/wiki/Missing", Status: "error", ErrorMessage: "page not found"},
	}
	for _, a := range attempts {
		if err := db.AppendScrapeAttempt(a); err != nil {
			t.Fatalf("Failed to append scrape attempt: %v", err)
		}
	}
}
