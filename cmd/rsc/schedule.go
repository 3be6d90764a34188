package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/fetch"
	"github.com/franz/roster-scout/internal/ingest"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Fetch match schedules and upsert them into the database",
	Long: `Fetch the schedule page for each selected team and parse the match
cards into schedule rows.

Matches are keyed by match_id; when the page carries none, a stable
one is derived from the team pair and date. Upserts only ever fill
empty columns, so a result page run after a fixture page adds the
score without disturbing anything else.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	// Schedule-specific flags
	scheduleCmd.Flags().String("team", "", "Team slug to ingest (as configured under teams:)")
	scheduleCmd.Flags().Bool("all", false, "Ingest every configured team")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	teams, err := selectTeams(cmd)
	if err != nil {
		return err
	}

	season := util.Season()

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

	client := fetch.NewClient(&fetch.Config{
		UserAgent: util.UserAgent(),
		RateLimit: util.RateLimit(),
	})
	defer client.Close()

	reconciler := reconcile.New(&reconcile.Config{
		Store:  db,
		Logger: logger,
		Policy: reconcile.NewPolicy(util.SourceRanks()),
	})

	ingestor := ingest.NewIngestor(&ingest.IngestorConfig{
		Store:      db,
		Client:     client,
		Reconciler: reconciler,
		Logger:     logger,
		RunID:      uuid.NewString(),
	})

	util.InfoLog("=== Schedule Ingest ===")
	util.InfoLog("Season: %d", season)
	util.InfoLog("Teams: %d", len(teams))

	startTime := time.Now()
	totals := &ingest.ScheduleStats{}

	for i := range teams {
		team := &teams[i]
		util.InfoLog("")
		util.InfoLog("[%d/%d] %s", i+1, len(teams), team.Name)

		stats, err := ingestor.IngestSchedule(ctx, team, season)
		if err != nil {
			return fmt.Errorf("schedule ingest failed for %s: %w", team.Slug, err)
		}

		totals.Matches += stats.Matches
		totals.Created += stats.Created
		totals.Updated += stats.Updated
		totals.Errors += stats.Errors
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Schedule Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Matches parsed: %d", totals.Matches)
	util.InfoLog("  New: %d, updated: %d", totals.Created, totals.Updated)
	if totals.Errors > 0 {
		util.WarnLog("  Errors: %d", totals.Errors)
	}

	matchCount, _ := db.CountMatches()
	util.InfoLog("Matches in database: %d", matchCount)

	util.InfoLog("")
	util.InfoLog("Next step: rsc highschool")

	return nil
}
