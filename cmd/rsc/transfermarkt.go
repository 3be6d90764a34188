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

var transfermarktCmd = &cobra.Command{
	Use:   "transfermarkt",
	Short: "Fill missing bio facts from Transfermarkt profiles",
	Long: `Walk players still missing a bio field and look up their
Transfermarkt profile for it.

Transfermarkt ranks below every club and league source, so whatever
it reports can only fill gaps; facts the club site already stated are
never displaced. One profile fetch fills every fact it carries
(birthdate, birthplace, citizenship, height), not just the field that
selected the player.`,
	RunE: runTransfermarkt,
}

func init() {
	rootCmd.AddCommand(transfermarktCmd)

	// Transfermarkt-specific flags
	transfermarktCmd.Flags().String("field", "birthdate", "Gap to fill: birthdate, birthplace or citizenship")
	transfermarktCmd.Flags().String("team", "", "Only players on this team slug")
	transfermarktCmd.Flags().Int("limit", 0, "Stop after this many players (0 = no limit)")
}

func runTransfermarkt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	field, _ := cmd.Flags().GetString("field")
	limit, _ := cmd.Flags().GetInt("limit")

	var team *ingest.Team
	if slug, _ := cmd.Flags().GetString("team"); slug != "" {
		teams, err := ingest.LoadTeams()
		if err != nil {
			return err
		}
		team, err = ingest.FindTeam(teams, slug)
		if err != nil {
			return err
		}
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

	filler := ingest.NewGapFiller(&ingest.GapFillerConfig{
		Store:      db,
		Source:     ingest.NewTransfermarktSource(client),
		Reconciler: reconciler,
		RunID:      uuid.NewString(),
	})

	util.InfoLog("=== Transfermarkt Gap Fill ===")
	util.InfoLog("Field: %s", field)
	util.InfoLog("Season: %d", season)

	startTime := time.Now()

	stats, err := filler.Fill(ctx, field, team, season, limit)
	if err != nil {
		return fmt.Errorf("gap fill failed: %w", err)
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Gap Fill Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Players examined: %d", stats.Players)
	util.InfoLog("  Players filled: %d", stats.Filled)
	util.InfoLog("  No usable profile: %d", stats.NoMatch)
	if stats.Errors > 0 {
		util.WarnLog("  Errors: %d", stats.Errors)
	}

	return nil
}
