package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database counters and scrape outcomes",
	Long: `Show summary statistics for everything in the database: player and
match counts, high-school coverage, the school reference table by
resolution status, field provenance by source, and per-source scrape
outcomes from the audit log.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	// Stats-specific flags
	statsCmd.Flags().Int("recent", 10, "How many recent scrape attempts to list")
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	recent, _ := cmd.Flags().GetInt("recent")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	util.InfoLog("=== Database Statistics ===")
	util.InfoLog("Database: %s", dbPath)
	fmt.Println()

	// Roster
	players, _ := db.CountPlayers()
	withSchool, _ := db.CountPlayersWithHighSchool()

	util.InfoLog("Roster:")
	util.InfoLog("  Players: %s", humanize.Comma(int64(players)))
	if players > 0 {
		coverage := float64(withSchool) / float64(players) * 100
		util.InfoLog("  With high school: %s (%.1f%%)", humanize.Comma(int64(withSchool)), coverage)
	}
	fmt.Println()

	// Schedule
	matches, _ := db.CountMatches()
	util.InfoLog("Schedule:")
	util.InfoLog("  Matches: %s", humanize.Comma(int64(matches)))
	if byStatus, err := db.CountMatchesByStatus(); err == nil {
		for _, status := range sortedKeys(byStatus) {
			util.InfoLog("    %s: %d", status, byStatus[status])
		}
	}
	fmt.Println()

	// School references
	if byStatus, err := db.CountHighSchoolRefsByStatus(); err == nil && len(byStatus) > 0 {
		util.InfoLog("School references:")
		for _, status := range sortedKeys(byStatus) {
			util.InfoLog("  %s: %d", status, byStatus[status])
		}
		fmt.Println()
	}

	// Provenance, in precedence order: the ranking that decided each
	// field is the order worth reading the counts in
	if bySource, err := db.CountFieldsBySource(); err == nil && len(bySource) > 0 {
		util.InfoLog("Field provenance:")
		policy := reconcile.NewPolicy(util.SourceRanks())
		for _, source := range policy.Sources() {
			if n, ok := bySource[source]; ok {
				util.InfoLog("  %s: %s field(s)", source, humanize.Comma(int64(n)))
				delete(bySource, source)
			}
		}
		// Sources no longer in the rank table still hold fields
		for _, source := range sortedKeys(bySource) {
			util.InfoLog("  %s: %s field(s)", source, humanize.Comma(int64(bySource[source])))
		}
		fmt.Println()
	}

	// Scrape outcomes
	if stats, err := db.GetSourceStats(); err == nil && len(stats) > 0 {
		util.InfoLog("Scrape outcomes by source:")
		fmt.Printf("  %-20s %9s %6s %6s %6s %9s\n", "source", "attempts", "ok", "warn", "err", "records")
		for _, stat := range stats {
			fmt.Printf("  %-20s %9d %6d %6d %6d %9d\n",
				stat.Source, stat.Attempts, stat.Success, stat.Warnings, stat.Errors, stat.Records)
		}
		fmt.Println()
	}

	// Recent activity
	if attempts, err := db.GetRecentScrapeAttempts(recent); err == nil && len(attempts) > 0 {
		util.InfoLog("Recent scrape attempts:")
		for _, a := range attempts {
			team := a.TeamSlug
			if team == "" {
				team = "all"
			}
			fmt.Printf("  %s | %-16s | %-14s | %-7s | %d record(s)\n",
				a.ScrapedAt.Format("2006-01-02 15:04"), a.Source, team, a.Status, a.RecordsFound)
		}
	}

	return nil
}

// sortedKeys returns map keys ordered by descending count, ties by name
func sortedKeys(counts map[string]int) []string {
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
