package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/match"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var rematchCmd = &cobra.Command{
	Use:   "rematch",
	Short: "Re-resolve pending and ambiguous school names",
	Long: `Re-run similarity resolution for school reference entries that did
not resolve when first seen.

Early in a season the reference table is thin; a name recorded as
pending in March may match cleanly once summer signings have filled
the table in. Entries that resolve adopt the canonical identity of
their match; entries with still nothing close are marked unmatched so
later passes stop re-examining them. No pages are fetched.`,
	RunE: runRematch,
}

func init() {
	rootCmd.AddCommand(rematchCmd)
}

func runRematch(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	util.InfoLog("Opening database: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logLevel := report.LevelInfo
	if quiet {
		logLevel = report.LevelWarning
	} else if verbose {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	matcher := match.New(&match.Config{
		Store:  db,
		Logger: logger,
		High:   viper.GetFloat64("match.high"),
		Low:    viper.GetFloat64("match.low"),
		Margin: viper.GetFloat64("match.margin"),
	})

	util.InfoLog("=== School Rematch ===")

	startTime := time.Now()

	result, err := matcher.RematchPending()
	if err != nil {
		return fmt.Errorf("rematch failed: %w", err)
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Rematch Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Entries examined: %d", result.Examined)
	util.InfoLog("  Matched: %d", result.Matched)
	util.InfoLog("  Still ambiguous: %d", result.Ambiguous)
	util.InfoLog("  Unmatched: %d", result.Unmatched)

	if byStatus, err := db.CountHighSchoolRefsByStatus(); err == nil && len(byStatus) > 0 {
		util.InfoLog("")
		util.InfoLog("Reference table by status:")
		for _, status := range []string{match.StatusMatched, match.StatusPending, match.StatusAmbiguous, match.StatusUnmatched} {
			if count := byStatus[status]; count > 0 {
				util.InfoLog("  %s: %d", status, count)
			}
		}
	}

	return nil
}
