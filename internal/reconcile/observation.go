package reconcile

import (
	"fmt"

	"github.com/franz/roster-scout/internal/util"
)

// PlayerObservation is one normalized sighting of a player from a single
// source. Zero values mean "not observed": the reconciler never interprets
// an empty string or zero number as data, so a sparse page cannot erase
// anything.
type PlayerObservation struct {
	// Natural key
	Team      string
	Season    int
	FirstName string
	LastName  string

	Position      string
	JerseyNumber  int
	HeightIn      int
	WeightLb      int
	Birthdate     string
	Birthplace    string
	Citizenship   string
	HometownCity  string
	HometownState string
	HeadshotURL   string
	BioURL        string

	// Nil when the source said nothing about the high school
	HighSchool *HighSchoolClaim

	Source string
}

// HighSchoolClaim is the compound high-school assertion. The school name
// and its provenance travel together or not at all; an unsourced name is
// an integrity violation, not a partial write.
type HighSchoolClaim struct {
	Name       string
	City       string
	State      string
	SourceURL  string
	SourceName string
}

// Validate rejects claims that would break the compound-write rule
func (c *HighSchoolClaim) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: high school claim without a name", util.ErrIntegrity)
	}
	if c.SourceURL == "" || c.SourceName == "" {
		return fmt.Errorf("%w: high school %q claimed without provenance", util.ErrIntegrity, c.Name)
	}
	return nil
}

// MatchObservation is one sighting of a scheduled or completed match.
// Scores are -1 when the source did not report them.
type MatchObservation struct {
	MatchID     string
	Season      int
	MatchDate   string
	MatchTime   string
	HomeTeam    string
	AwayTeam    string
	HomeTeamRaw string
	AwayTeamRaw string
	Venue       string
	Competition string
	Broadcast   string
	Status      string
	HomeScore   int
	AwayScore   int
	MatchURL    string

	Source string
}
