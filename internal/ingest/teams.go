package ingest

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/franz/roster-scout/internal/util"
)

// Team is one configured club: where its roster and schedule live
type Team struct {
	Name        string `mapstructure:"name"`
	Slug        string `mapstructure:"slug"`
	RosterURL   string `mapstructure:"roster_url"`
	ScheduleURL string `mapstructure:"schedule_url"`
}

// BaseURL returns the scheme://host origin of the team's site, derived
// from the roster URL
func (t *Team) BaseURL() string {
	return originOf(t.RosterURL)
}

// LoadTeams reads the configured team list. Slugs identify teams on the
// command line and in audit rows, so entries without one are rejected
// rather than silently skipped.
func LoadTeams() ([]Team, error) {
	var teams []Team
	if err := viper.UnmarshalKey("teams", &teams); err != nil {
		return nil, fmt.Errorf("failed to parse teams config: %w", err)
	}
	if len(teams) == 0 {
		return nil, util.ErrNoTeams
	}

	for i := range teams {
		if teams[i].Name == "" || teams[i].Slug == "" {
			return nil, fmt.Errorf("%w: team entry %d missing name or slug", util.ErrInvalidConfig, i)
		}
		teams[i].Slug = strings.ToLower(teams[i].Slug)
	}

	return teams, nil
}

// FindTeam returns the configured team with the given slug
func FindTeam(teams []Team, slug string) (*Team, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for i := range teams {
		if teams[i].Slug == slug {
			return &teams[i], nil
		}
	}
	return nil, fmt.Errorf("%w: unknown team %q (configured: %s)", util.ErrNotFound, slug, slugList(teams))
}

func slugList(teams []Team) string {
	slugs := make([]string, len(teams))
	for i, t := range teams {
		slugs[i] = t.Slug
	}
	return strings.Join(slugs, ", ")
}
