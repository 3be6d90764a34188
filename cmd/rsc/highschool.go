package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/fetch"
	"github.com/franz/roster-scout/internal/ingest"
	"github.com/franz/roster-scout/internal/match"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var highschoolCmd = &cobra.Command{
	Use:   "highschool",
	Short: "Find high schools for players that are missing one",
	Long: `Walk every player without a high school on record and ask a cascade
of lookup sources, best first: club signing announcements, then
Wikipedia articles. The first source with a validated school name
wins; the claim is resolved against the school reference table and
merged with full provenance (source URL and name).

Lookups are cached in the database, including misses, so re-running
the command only fetches for players nothing has answered yet.

Without flags the pass covers all configured teams.`,
	RunE: runHighschool,
}

func init() {
	rootCmd.AddCommand(highschoolCmd)

	// Highschool-specific flags
	highschoolCmd.Flags().String("team", "", "Only players on this team slug")
	highschoolCmd.Flags().String("source", "", "Only this lookup source (club_announcement, wikipedia)")
	highschoolCmd.Flags().String("player", "", "Only players matching this name (\"First Last\")")
}

func runHighschool(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	// The single-player path works without configured teams; the
	// announcement source just has no base URL to probe then.
	playerName, _ := cmd.Flags().GetString("player")

	teams, err := ingest.LoadTeams()
	if err != nil && !(errors.Is(err, util.ErrNoTeams) && playerName != "") {
		return err
	}

	if slug, _ := cmd.Flags().GetString("team"); slug != "" {
		team, err := ingest.FindTeam(teams, slug)
		if err != nil {
			return err
		}
		teams = []ingest.Team{*team}
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

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

	client := fetch.NewClient(&fetch.Config{
		UserAgent: util.UserAgent(),
		RateLimit: util.RateLimit(),
	})
	defer client.Close()

	sources, err := selectSources(cmd, client)
	if err != nil {
		return err
	}

	cache := ingest.NewLookupCache(db.DB())
	if err := cache.EnsureSchema(); err != nil {
		return fmt.Errorf("failed to prepare lookup cache: %w", err)
	}

	matcher := match.New(&match.Config{
		Store:  db,
		Logger: logger,
		High:   viper.GetFloat64("match.high"),
		Low:    viper.GetFloat64("match.low"),
		Margin: viper.GetFloat64("match.margin"),
	})

	reconciler := reconcile.New(&reconcile.Config{
		Store:  db,
		Logger: logger,
		Policy: reconcile.NewPolicy(util.SourceRanks()),
	})

	enricher := ingest.NewEnricher(&ingest.EnricherConfig{
		Store:      db,
		Matcher:    matcher,
		Reconciler: reconciler,
		Cache:      cache,
		Logger:     logger,
		Sources:    sources,
		RunID:      uuid.NewString(),
	})

	util.InfoLog("=== High-School Enrichment ===")
	util.InfoLog("Season: %d", season)
	util.InfoLog("Sources: %s", sourceNames(sources))

	startTime := time.Now()
	totals := &ingest.EnrichStats{}

	if playerName != "" {
		if err := enrichByName(ctx, db, enricher, teams, playerName, totals); err != nil {
			return err
		}
	} else {
		if len(teams) == 0 {
			return util.ErrNoTeams
		}
		for i := range teams {
			team := &teams[i]
			util.InfoLog("")
			util.InfoLog("[%d/%d] %s", i+1, len(teams), team.Name)

			stats, err := enricher.EnrichTeam(ctx, team, season)
			if err != nil {
				return fmt.Errorf("enrichment failed for %s: %w", team.Slug, err)
			}

			totals.Players += stats.Players
			totals.Found += stats.Found
			totals.FromCache += stats.FromCache
			totals.NoResult += stats.NoResult
			totals.Errors += stats.Errors
		}
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Enrichment Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("  Players examined: %d", totals.Players)
	util.InfoLog("  Schools found: %d", totals.Found)
	util.InfoLog("  Answered from cache: %d", totals.FromCache)
	util.InfoLog("  No source knew: %d", totals.NoResult)
	if totals.Errors > 0 {
		util.WarnLog("  Errors: %d", totals.Errors)
	}

	withSchool, _ := db.CountPlayersWithHighSchool()
	total, _ := db.CountPlayers()
	if total > 0 {
		util.InfoLog("Coverage: %d/%d players have a high school", withSchool, total)
	}

	if byStatus, err := db.CountHighSchoolRefsByStatus(); err == nil {
		if pending := byStatus[match.StatusPending] + byStatus[match.StatusAmbiguous]; pending > 0 {
			util.InfoLog("")
			util.InfoLog("Next step: rsc rematch (%d school name(s) unresolved)", pending)
		}
	}

	return nil
}

// enrichByName runs the cascade for every roster player matching a name
func enrichByName(ctx context.Context, db *store.Store, enricher *ingest.Enricher, teams []ingest.Team, name string, totals *ingest.EnrichStats) error {
	players, err := db.SearchPlayersByName(name)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		util.WarnLog("No players match %q", name)
		return nil
	}

	for _, player := range players {
		if player.HighSchool != "" {
			util.InfoLog("%s already has a high school: %s", player.FullName(), player.HighSchool)
			continue
		}

		totals.Players++
		found, err := enricher.EnrichPlayer(ctx, player, teamForPlayer(teams, player))
		if err != nil {
			return fmt.Errorf("enrichment failed for %s: %w", player.FullName(), err)
		}
		if found {
			totals.Found++
		} else {
			totals.NoResult++
		}
	}

	return nil
}

// teamForPlayer maps a stored player back to its configured team. An
// unconfigured team still enriches; club-site probes just get skipped.
func teamForPlayer(teams []ingest.Team, player *store.Player) *ingest.Team {
	for i := range teams {
		if teams[i].Name == player.Team {
			return &teams[i]
		}
	}
	return &ingest.Team{Name: player.Team}
}

// selectSources builds the lookup cascade in precedence order, filtered
// by --source when given
func selectSources(cmd *cobra.Command, client *fetch.Client) ([]ingest.SchoolSource, error) {
	all := []ingest.SchoolSource{
		ingest.NewAnnounceSource(client),
		ingest.NewWikipediaSource(client),
	}

	want, _ := cmd.Flags().GetString("source")
	if want == "" {
		return all, nil
	}

	for _, src := range all {
		if src.Name() == want {
			return []ingest.SchoolSource{src}, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q (available: %s)", want, sourceNames(all))
}

func sourceNames(sources []ingest.SchoolSource) string {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name())
	}
	return strings.Join(names, ", ")
}
