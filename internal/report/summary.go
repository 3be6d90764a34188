package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/roster-scout/internal/store"
)

// SummaryReport represents a complete summary report
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration

	// Roster statistics
	PlayersTracked    int
	PlayersWithSchool int

	// Schedule statistics
	MatchesTracked  int
	MatchesByStatus map[string]int

	// School matching statistics
	SchoolsByStatus map[string]int

	// Scrape statistics
	ScrapeAttempts int
	SourceStats    []*store.SourceStat

	// Field provenance
	FieldsBySource map[string]int

	// Details
	RecentFailures []FailureInfo

	// Metadata
	Season       int
	DatabasePath string
	EventLogPath string
}

// FailureInfo represents a failed scrape attempt
type FailureInfo struct {
	Source string
	URL    string
	Error  string
}

// GenerateSummaryReport creates a summary report from database and event logs
func GenerateSummaryReport(db *store.Store, eventLogPath string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt:     time.Now(),
		EventLogPath:    eventLogPath,
		MatchesByStatus: make(map[string]int),
		SchoolsByStatus: make(map[string]int),
		FieldsBySource:  make(map[string]int),
		RecentFailures:  make([]FailureInfo, 0),
	}

	// Gather roster statistics
	report.PlayersTracked, _ = db.CountPlayers()
	report.PlayersWithSchool, _ = db.CountPlayersWithHighSchool()

	// Gather schedule statistics
	report.MatchesTracked, _ = db.CountMatches()
	if byStatus, err := db.CountMatchesByStatus(); err == nil {
		report.MatchesByStatus = byStatus
	}

	// Gather school matching statistics
	if byStatus, err := db.CountHighSchoolRefsByStatus(); err == nil {
		report.SchoolsByStatus = byStatus
	}

	// Gather provenance statistics
	if bySource, err := db.CountFieldsBySource(); err == nil {
		report.FieldsBySource = bySource
	}

	// Gather scrape statistics
	report.ScrapeAttempts, _ = db.CountScrapeAttempts()
	report.SourceStats, _ = db.GetSourceStats()

	// Gather recent failures (last 7 days, top 10)
	report.RecentFailures = gatherRecentFailures(db, 10)

	return report, nil
}

// gatherRecentFailures retrieves the most recent failed scrape attempts
func gatherRecentFailures(db *store.Store, limit int) []FailureInfo {
	attempts, _ := db.GetFailedScrapeAttempts(time.Now().AddDate(0, 0, -7), limit)

	failures := make([]FailureInfo, 0, len(attempts))
	for _, attempt := range attempts {
		failures = append(failures, FailureInfo{
			Source: attempt.Source,
			URL:    attempt.URL,
			Error:  attempt.ErrorMessage,
		})
	}

	return failures
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	// Create output directory
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate markdown content
	var md strings.Builder

	// Header
	md.WriteString("# Roster Scout - Summary Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.Season > 0 {
		md.WriteString(fmt.Sprintf("**Season:** %d\n\n", report.Season))
	}
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Players Tracked | %s |\n", humanize.Comma(int64(report.PlayersTracked))))
	md.WriteString(fmt.Sprintf("| Players with High School | %s |\n", humanize.Comma(int64(report.PlayersWithSchool))))
	md.WriteString(fmt.Sprintf("| Matches Tracked | %s |\n", humanize.Comma(int64(report.MatchesTracked))))
	md.WriteString(fmt.Sprintf("| Scrape Attempts | %s |\n", humanize.Comma(int64(report.ScrapeAttempts))))
	md.WriteString("\n")

	if report.PlayersTracked > 0 {
		coverage := float64(report.PlayersWithSchool) / float64(report.PlayersTracked) * 100
		md.WriteString(fmt.Sprintf("High-school coverage: **%.1f%%**\n\n", coverage))
	}

	// Schedule
	if len(report.MatchesByStatus) > 0 {
		md.WriteString("## 📅 Schedule\n\n")
		md.WriteString("| Status | Matches |\n")
		md.WriteString("|--------|---------|\n")
		for _, status := range sortedByCount(report.MatchesByStatus) {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", status, report.MatchesByStatus[status]))
		}
		md.WriteString("\n")
	}

	// School matching
	if len(report.SchoolsByStatus) > 0 {
		md.WriteString("## 🏫 School Matching\n\n")
		md.WriteString("| Status | Schools |\n")
		md.WriteString("|--------|---------|\n")
		for _, status := range sortedByCount(report.SchoolsByStatus) {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", status, report.SchoolsByStatus[status]))
		}
		md.WriteString("\n")

		if ambiguous := report.SchoolsByStatus["ambiguous"]; ambiguous > 0 {
			md.WriteString(fmt.Sprintf("⚠️ %d school name(s) need review (`rsc rematch` after adding references)\n\n", ambiguous))
		}
	}

	// Sources
	if len(report.SourceStats) > 0 {
		md.WriteString("## 🌐 Sources\n\n")
		md.WriteString("| Source | Attempts | OK | Warnings | Errors | Records |\n")
		md.WriteString("|--------|----------|----|----------|--------|---------|\n")
		for _, stat := range report.SourceStats {
			md.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %s |\n",
				stat.Source, stat.Attempts, stat.Success, stat.Warnings, stat.Errors,
				humanize.Comma(int64(stat.Records))))
		}
		md.WriteString("\n")
	}

	// Field provenance
	if len(report.FieldsBySource) > 0 {
		md.WriteString("## 🔖 Field Provenance\n\n")
		md.WriteString("*Which source each stored field value came from*\n\n")
		md.WriteString("| Source | Fields Owned |\n")
		md.WriteString("|--------|--------------|\n")
		for _, source := range sortedByCount(report.FieldsBySource) {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", source, report.FieldsBySource[source]))
		}
		md.WriteString("\n")
	}

	// Failures
	if len(report.RecentFailures) > 0 {
		md.WriteString("## ⚠️ Recent Failures\n\n")
		md.WriteString("| Source | URL | Error |\n")
		md.WriteString("|--------|-----|-------|\n")
		for _, failure := range report.RecentFailures {
			md.WriteString(fmt.Sprintf("| %s | `%s` | %s |\n",
				failure.Source,
				truncateURL(failure.URL, 60),
				failure.Error))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by [rsc](https://github.com/franz/roster-scout) - Roster Scout*\n")

	// Write to file
	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// sortedByCount returns map keys ordered by descending count, ties by name
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// truncateURL truncates a URL to a maximum length
func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(url) - (maxLen/2 - 2)
	return url[:start] + "..." + url[end:]
}
