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

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch club rosters and merge player bios into the database",
	Long: `Fetch the roster page for each selected team, discover player bio
links, and fetch every bio with a bounded worker pool.

Extracted fields (position, height, weight, birthdate, hometown) are
normalized and merged as source club_site, the highest-precedence
source. Re-running the command is safe: merges are rank-gated, so a
second pass over the same pages changes nothing.

Fetch failures are logged and recorded in the scrape log; the run
continues with the remaining pages.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Ingest-specific flags
	ingestCmd.Flags().String("team", "", "Team slug to ingest (as configured under teams:)")
	ingestCmd.Flags().Bool("all", false, "Ingest every configured team")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	// Set log level
	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	teams, err := selectTeams(cmd)
	if err != nil {
		return err
	}

	concurrency := viper.GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = 4
	}
	season := util.Season()

	util.InfoLog("Opening database: %s", dbPath)

	// Open database
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Create event logger with appropriate log level
	logLevel := report.LevelInfo // Default
	if quiet {
		logLevel = report.LevelWarning // Only warnings and errors
	} else if verbose {
		logLevel = report.LevelDebug // Everything
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

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
		Store:       db,
		Client:      client,
		Reconciler:  reconciler,
		Logger:      logger,
		Concurrency: concurrency,
		RunID:       uuid.NewString(),
	})

	// Phase 1: Roster pages
	util.InfoLog("=== Phase 1: Roster Ingest ===")
	util.InfoLog("Season: %d", season)
	util.InfoLog("Teams: %d", len(teams))
	util.InfoLog("Concurrency: %d", concurrency)

	startTime := time.Now()
	totals := &ingest.RosterStats{}

	for i := range teams {
		team := &teams[i]
		util.InfoLog("")
		util.InfoLog("[%d/%d] %s", i+1, len(teams), team.Name)

		stats, err := ingestor.IngestRoster(ctx, team, season)
		if err != nil {
			return fmt.Errorf("roster ingest failed for %s: %w", team.Slug, err)
		}

		totals.BioLinks += stats.BioLinks
		totals.Players += stats.Players
		totals.Created += stats.Created
		totals.Errors += stats.Errors
	}

	duration := time.Since(startTime)

	// Summary
	util.InfoLog("")
	util.SuccessLog("=== Ingest Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Bio pages found: %d", totals.BioLinks)
	util.InfoLog("  Players merged: %d (%d new)", totals.Players, totals.Created)
	if totals.Errors > 0 {
		util.WarnLog("  Errors: %d", totals.Errors)
	}

	playerCount, _ := db.CountPlayers()
	util.InfoLog("Players in database: %d", playerCount)

	util.InfoLog("")
	util.InfoLog("Next step: rsc schedule --all")

	return nil
}

// selectTeams resolves --team/--all against the configured team list
func selectTeams(cmd *cobra.Command) ([]ingest.Team, error) {
	teams, err := ingest.LoadTeams()
	if err != nil {
		return nil, err
	}

	slug, _ := cmd.Flags().GetString("team")
	all, _ := cmd.Flags().GetBool("all")

	switch {
	case slug != "":
		team, err := ingest.FindTeam(teams, slug)
		if err != nil {
			return nil, err
		}
		return []ingest.Team{*team}, nil
	case all:
		return teams, nil
	default:
		return nil, fmt.Errorf("specify --team <slug> or --all")
	}
}
