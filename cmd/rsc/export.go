package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/export"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write player and schedule snapshots to disk",
	Long: `Write the canonical players and schedules tables out as snapshot
files for downstream consumers.

Formats: csv (spreadsheet-friendly, one file per table) and json
(indented arrays with empty fields omitted). Players are ordered by
team and last name, schedules by match date.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Export-specific flags
	exportCmd.Flags().String("format", "csv", "Output format: csv or json")
	exportCmd.Flags().String("out", "output", "Output directory")
	exportCmd.Flags().Int("season", 0, "Only this season (0 = all)")
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	season, _ := cmd.Flags().GetInt("season")

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

	exporter := export.New(&export.Config{
		Store:  db,
		Logger: logger,
	})

	util.InfoLog("=== Export ===")
	util.InfoLog("Format: %s", format)
	util.InfoLog("Output: %s", outDir)

	startTime := time.Now()

	result, err := exporter.WriteSnapshot(outDir, format, season)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Export Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Players: %d", result.Players)
	util.InfoLog("  Matches: %d", result.Matches)
	for _, file := range result.Files {
		util.InfoLog("  Wrote: %s", file)
	}

	return nil
}
