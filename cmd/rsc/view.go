package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/ingest"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show stored players and what is known about them",
	Long: `Display stored player records in a human-readable format.

Each player block shows the bio facts on record plus the high-school
provenance when one has been found: the school, and the source page
that named it.

Use --sources to additionally show which source wrote each stored
field; useful for checking what a higher-ranked scraper would and
would not displace.`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	// View-specific flags
	viewCmd.Flags().String("team", "", "Filter by team slug (or full team name)")
	viewCmd.Flags().Int("season", 0, "Filter by season (0 = all)")
	viewCmd.Flags().Bool("missing", false, "Show only players without a high school")
	viewCmd.Flags().Bool("sources", false, "Show per-field source attribution")
}

func runView(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	teamFilter, _ := cmd.Flags().GetString("team")
	season, _ := cmd.Flags().GetInt("season")
	missingOnly, _ := cmd.Flags().GetBool("missing")
	showSources, _ := cmd.Flags().GetBool("sources")

	// Open database
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	teamName := resolveTeamName(teamFilter)

	var players []*store.Player
	if missingOnly {
		players, err = db.GetPlayersMissingHighSchool(teamName, season)
	} else {
		players, err = db.GetPlayers(teamName, season)
	}
	if err != nil {
		return fmt.Errorf("failed to get players: %w", err)
	}

	if len(players) == 0 {
		util.WarnLog("No players found. Run 'rsc ingest' first.")
		return nil
	}

	util.InfoLog("=== Player Data ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("")

	currentTeam := ""
	for _, p := range players {
		if p.Team != currentTeam {
			currentTeam = p.Team
			fmt.Println()
			util.InfoLog("%s (%d)", p.Team, p.Season)
			fmt.Println()
		}

		printPlayer(db, p, showSources)
	}

	// Final summary
	fmt.Println()
	util.InfoLog("=== Statistics ===")
	util.InfoLog("Players shown: %d", len(players))

	if !missingOnly {
		util.InfoLog("To see players still missing a school: rsc view --missing")
	}
	if !showSources {
		util.InfoLog("To see field provenance: rsc view --sources")
	}

	return nil
}

// printPlayer writes one player block
func printPlayer(db *store.Store, p *store.Player, showSources bool) {
	fmt.Printf("  %s\n", p.FullName())

	fmt.Printf("     Position: %s | #%s\n", orNA(p.Position), orNA(intString(p.JerseyNumber)))

	if p.HometownCity != "" || p.HometownState != "" {
		fmt.Printf("     Hometown: %s, %s\n", orNA(p.HometownCity), orNA(p.HometownState))
	}

	if p.HighSchool != "" {
		fmt.Printf("     High School: %s", p.HighSchool)
		if p.HighSchoolCity != "" {
			fmt.Printf(" (%s, %s)", p.HighSchoolCity, p.HighSchoolState)
		}
		fmt.Println()
		if p.HighSchoolSourceURL != "" {
			fmt.Printf("        Source: %s\n", orNA(p.HighSchoolSourceName))
			fmt.Printf("        URL: %s\n", p.HighSchoolSourceURL)
		}
	}

	if p.HeightIn > 0 || p.WeightLb > 0 {
		fmt.Printf("     Height: %s | Weight: %s\n", formatHeight(p.HeightIn), formatWeight(p.WeightLb))
	}

	if p.Birthdate != "" {
		born := p.Birthdate
		if p.Birthplace != "" {
			born += ", " + p.Birthplace
		}
		fmt.Printf("     Born: %s\n", born)
	}

	if showSources {
		if sources, err := db.GetFieldSources(p.ID); err == nil && len(sources) > 0 {
			fmt.Print("     Sources: ")
			first := true
			for _, field := range fieldOrder {
				fs, ok := sources[field]
				if !ok {
					continue
				}
				if !first {
					fmt.Print(", ")
				}
				fmt.Printf("%s=%s", field, fs.Source)
				first = false
			}
			fmt.Println()
		}
	}

	fmt.Println()
}

// fieldOrder fixes the provenance display order; map iteration would
// shuffle it on every run
var fieldOrder = []string{
	"position", "jersey_number", "height_in", "weight_lb",
	"birthdate", "birthplace", "citizenship",
	"hometown_city", "hometown_state", "high_school",
	"headshot_url", "bio_url",
}

// resolveTeamName maps a configured slug to the stored team name.
// Values that match no configured slug pass through as-is, so filtering
// by full name works without a config file.
func resolveTeamName(filter string) string {
	if filter == "" {
		return ""
	}
	teams, err := ingest.LoadTeams()
	if err != nil {
		return filter
	}
	if team, err := ingest.FindTeam(teams, filter); err == nil {
		return team.Name
	}
	return filter
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func intString(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func formatHeight(inches int) string {
	if inches <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d'%d\"", inches/12, inches%12)
}

func formatWeight(pounds int) string {
	if pounds <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d lb", pounds)
}
