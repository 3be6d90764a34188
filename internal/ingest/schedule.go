package ingest

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/franz/roster-scout/internal/normalize"
	"github.com/franz/roster-scout/internal/reconcile"
)

// Match card selectors tried in order; the first one that finds
// anything wins
var matchCardSelectors = []string{
	"[class*='MatchCard']",
	"[class*='match-card']",
	"[class*='fixture']",
	"[class*='game-card']",
	"article[class*='match']",
}

// Row-mode selector for team schedule pages that render tables instead
// of cards
const matchRowSelector = "[class*='match'], [class*='schedule'] tr, [class*='game']"

// Tokens that mark a card line as a team name rather than venue or
// broadcast text
var teamTokens = []string{"FC", "SC", "United", "City", "Galaxy", "Sounders", "Timbers", "Fire", "Crew"}

var (
	matchDateRe  = regexp.MustCompile(`\w+\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4}`)
	matchTimeRe  = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)?`)
	matchScoreRe = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	opponentVsRe = regexp.MustCompile(`(?i)\bvs?\.?\s+([A-Za-z\s.]+?)(?:\d|$|\n)`)
	opponentAtRe = regexp.MustCompile(`(?i)(?:@|\bat\b)\s+([A-Za-z\s.]+?)(?:\d|$|\n)`)
	nonLetterRe  = regexp.MustCompile(`[^A-Z]`)
)

// ParseSchedulePage extracts match observations from a schedule page.
// Card markup is tried first; pages that render plain rows fall back to
// opponent lines read relative to the configured team.
func ParseSchedulePage(html []byte, team *Team, season int) ([]*reconcile.MatchObservation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var obs []*reconcile.MatchObservation
	for _, sel := range matchCardSelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		nodes.Each(func(_ int, s *goquery.Selection) {
			if m := parseMatchCard(s.Text(), season); m != nil {
				obs = append(obs, m)
			}
		})
		break
	}

	if len(obs) == 0 && team != nil {
		doc.Find(matchRowSelector).Each(func(_ int, s *goquery.Selection) {
			if m := parseMatchRow(s.Text(), team.Name, season); m != nil {
				obs = append(obs, m)
			}
		})
	}

	return dedupeMatches(obs), nil
}

// parseMatchCard reads one match card's rendered text. Cards list both
// team names on their own lines; anything with fewer than two team
// lines is not a match.
func parseMatchCard(text string, season int) *reconcile.MatchObservation {
	lines := splitLines(text)

	var teams []string
	for _, line := range lines {
		if isTeamLine(line) {
			teams = append(teams, line)
		}
	}
	if len(teams) < 2 {
		return nil
	}

	m := newMatchObservation(season)
	m.HomeTeamRaw = teams[0]
	m.AwayTeamRaw = teams[1]
	m.HomeTeam = normalize.Clean(teams[0])
	m.AwayTeam = normalize.Clean(teams[1])

	fillMatchFacts(m, lines)
	m.MatchID = DeriveMatchID(m.HomeTeam, m.AwayTeam, m.MatchDate)
	return m
}

// parseMatchRow reads one schedule row from a team page, where only the
// opponent is named and home/away is carried by "vs" or "@". Row cells
// arrive newline-separated, so the marker checks run on flattened text.
func parseMatchRow(text, teamName string, season int) *reconcile.MatchObservation {
	flat := strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(flat)

	m := newMatchObservation(season)
	switch {
	case strings.Contains(lower, " vs ") || strings.Contains(lower, " vs. ") || strings.Contains(lower, " v "):
		m.HomeTeamRaw = teamName
		if om := opponentVsRe.FindStringSubmatch(flat); om != nil {
			m.AwayTeamRaw = strings.TrimSpace(om[1])
		}
	case strings.Contains(flat, " @ ") || strings.Contains(lower, " at "):
		m.AwayTeamRaw = teamName
		if om := opponentAtRe.FindStringSubmatch(flat); om != nil {
			m.HomeTeamRaw = strings.TrimSpace(om[1])
		}
	}
	if m.HomeTeamRaw == "" || m.AwayTeamRaw == "" {
		return nil
	}

	m.HomeTeam = normalize.Clean(m.HomeTeamRaw)
	m.AwayTeam = normalize.Clean(m.AwayTeamRaw)

	fillMatchFacts(m, splitLines(text))
	m.MatchID = DeriveMatchID(m.HomeTeam, m.AwayTeam, m.MatchDate)
	return m
}

func newMatchObservation(season int) *reconcile.MatchObservation {
	return &reconcile.MatchObservation{
		Season:      season,
		Competition: "MLS Regular Season",
		Status:      "scheduled",
		HomeScore:   -1,
		AwayScore:   -1,
	}
}

// fillMatchFacts scans card lines for the date, kickoff time, score and
// status keywords. First match wins for each fact.
func fillMatchFacts(m *reconcile.MatchObservation, lines []string) {
	for _, line := range lines {
		if m.MatchDate == "" {
			if d := matchDateRe.FindString(line); d != "" {
				m.MatchDate = normalize.ParseDate(d)
			}
		}
		if m.MatchTime == "" {
			if t := matchTimeRe.FindString(line); t != "" {
				m.MatchTime = normalize.Clean(t)
			}
		}
		if m.HomeScore < 0 {
			if sm := matchScoreRe.FindStringSubmatch(line); sm != nil {
				// Two digits at most: a dashed date is not a score
				if len(sm[1]) <= 2 && len(sm[2]) <= 2 {
					m.HomeScore = normalize.ParseScore(sm[1])
					m.AwayScore = normalize.ParseScore(sm[2])
					m.Status = "final"
				}
			}
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "postponed") {
			m.Status = "postponed"
		} else if strings.Contains(lower, "cancelled") || strings.Contains(lower, "canceled") {
			m.Status = "cancelled"
		}
	}
}

// DeriveMatchID builds a deterministic match key when the source page
// does not carry one: three-letter team codes plus the ISO date, so a
// re-scrape of the same fixture updates its row instead of duplicating
// it. Empty when any part is missing; an unkeyable match cannot be
// stored.
func DeriveMatchID(homeTeam, awayTeam, isoDate string) string {
	home := teamCode(homeTeam)
	away := teamCode(awayTeam)
	if home == "" || away == "" || isoDate == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", home, away, isoDate)
}

// teamCode reduces a team name to its first three letters, uppercased
func teamCode(name string) string {
	letters := nonLetterRe.ReplaceAllString(strings.ToUpper(name), "")
	if letters == "" {
		return ""
	}
	if len(letters) > 3 {
		letters = letters[:3]
	}
	return letters
}

func isTeamLine(line string) bool {
	for _, tok := range teamTokens {
		if strings.Contains(line, tok) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// dedupeMatches drops repeated match ids, keeping the first sighting.
// Unkeyed observations pass through so the reconciler can report them.
func dedupeMatches(obs []*reconcile.MatchObservation) []*reconcile.MatchObservation {
	seen := make(map[string]bool, len(obs))
	out := obs[:0]
	for _, m := range obs {
		if m.MatchID != "" {
			if seen[m.MatchID] {
				continue
			}
			seen[m.MatchID] = true
		}
		out = append(out, m)
	}
	return out
}
