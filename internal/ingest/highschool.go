package ingest

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/franz/roster-scout/internal/match"
	"github.com/franz/roster-scout/internal/normalize"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

// SchoolSource is one place high-school data can come from. Sources
// are tried in precedence order; the first claim wins.
type SchoolSource interface {
	// Name is the source key used for precedence ranking and audit rows
	Name() string

	// Lookup finds a sourced claim for the player. Nil without error
	// means the source has nothing for this player.
	Lookup(ctx context.Context, player *store.Player, team *Team) (*reconcile.HighSchoolClaim, error)
}

// Enricher fills missing high-school data by walking a cascade of
// lookup sources, resolving each hit against the reference table and
// merging it with provenance.
type Enricher struct {
	store      *store.Store
	matcher    *match.Matcher
	reconciler *reconcile.Reconciler
	cache      *LookupCache
	logger     *report.EventLogger
	sources    []SchoolSource
	runID      string
}

// EnricherConfig holds enricher configuration
type EnricherConfig struct {
	Store      *store.Store
	Matcher    *match.Matcher
	Reconciler *reconcile.Reconciler
	Cache      *LookupCache
	Logger     *report.EventLogger
	Sources    []SchoolSource
	RunID      string
}

// NewEnricher creates a new Enricher
func NewEnricher(cfg *EnricherConfig) *Enricher {
	return &Enricher{
		store:      cfg.Store,
		matcher:    cfg.Matcher,
		reconciler: cfg.Reconciler,
		cache:      cfg.Cache,
		logger:     cfg.Logger,
		sources:    cfg.Sources,
		runID:      cfg.RunID,
	}
}

// EnrichStats describes one enrichment pass
type EnrichStats struct {
	Players   int // players examined
	Found     int // players that gained a school
	FromCache int // lookups answered by the cache
	NoResult  int // players no source knew
	Errors    int // lookup or merge failures
}

// EnrichTeam runs the source cascade over every player on the team
// that still has no high school. Lookup failures are recorded and the
// pass continues; only store failures abort it.
func (e *Enricher) EnrichTeam(ctx context.Context, team *Team, season int) (*EnrichStats, error) {
	players, err := e.store.GetPlayersMissingHighSchool(team.Name, season)
	if err != nil {
		return nil, err
	}

	stats := &EnrichStats{Players: len(players)}
	if len(players) == 0 {
		util.InfoLog("No players missing high school data for %s", team.Name)
		return stats, nil
	}

	util.InfoLog("Enriching %d player(s) for %s...", len(players), team.Name)

	for i, player := range players {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		util.DebugLog("[%d/%d] %s", i+1, len(players), player.FullName())

		if err := e.enrichOne(ctx, stats, player, team); err != nil {
			return stats, err
		}
	}

	util.SuccessLog("Found high school for %d/%d player(s) on %s",
		stats.Found, stats.Players, team.Name)
	return stats, nil
}

// EnrichPlayer runs the source cascade for a single player
func (e *Enricher) EnrichPlayer(ctx context.Context, player *store.Player, team *Team) (bool, error) {
	stats := &EnrichStats{Players: 1}
	if err := e.enrichOne(ctx, stats, player, team); err != nil {
		return false, err
	}
	return stats.Found > 0, nil
}

func (e *Enricher) enrichOne(ctx context.Context, stats *EnrichStats, player *store.Player, team *Team) error {
	for _, src := range e.sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		claim, fromCache, err := e.lookupCached(ctx, src, player, team)
		if err != nil {
			stats.Errors++
			e.logger.LogError(report.EventSchool, "", err)
			e.audit(src.Name(), team, "", "error", 0, err.Error())
			continue
		}
		if fromCache {
			stats.FromCache++
		}
		if claim == nil {
			if !fromCache {
				e.audit(src.Name(), team, "", "warning", 0, "")
			}
			continue
		}
		if !fromCache {
			e.audit(src.Name(), team, claim.SourceURL, "success", 1, "")
		}

		// Resolve the raw name against the reference table before the
		// merge; pending and ambiguous entries are created here
		if _, err := e.matcher.Match(claim.Name); err != nil {
			return err
		}

		obs := &reconcile.PlayerObservation{
			Team:       player.Team,
			Season:     player.Season,
			FirstName:  player.FirstName,
			LastName:   player.LastName,
			HighSchool: claim,
			Source:     src.Name(),
		}
		if _, err := e.reconciler.Player(obs); err != nil {
			if errors.Is(err, util.ErrIntegrity) {
				stats.Errors++
				return nil
			}
			return err
		}

		util.InfoLog("  %s: %s (%s)", player.FullName(), claim.Name, claim.SourceName)
		stats.Found++
		return nil
	}

	stats.NoResult++
	return nil
}

// lookupCached consults the cache before asking the source, and stores
// whatever the source answers, including a miss. Lookup errors are not
// cached; the next run should retry those.
func (e *Enricher) lookupCached(ctx context.Context, src SchoolSource, player *store.Player, team *Team) (*reconcile.HighSchoolClaim, bool, error) {
	query := player.FullName()

	if e.cache != nil {
		cached, err := e.cache.Get(src.Name(), query)
		if err == nil && cached != nil {
			util.DebugLog("Lookup cache hit: %s/%s", src.Name(), query)
			return cached.Claim, true, nil
		}
	}

	claim, err := src.Lookup(ctx, player, team)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		if err := e.cache.Put(src.Name(), query, claim); err != nil {
			util.WarnLog("Failed to cache lookup result: %v", err)
		}
	}

	return claim, false, nil
}

// audit appends one attempt row, best effort
func (e *Enricher) audit(source string, team *Team, url, status string, records int, errMsg string) {
	slug := ""
	if team != nil {
		slug = team.Slug
	}
	err := e.store.AppendScrapeAttempt(&store.ScrapeAttempt{
		RunID:        e.runID,
		Source:       source,
		TeamSlug:     slug,
		URL:          url,
		Status:       status,
		RecordsFound: records,
		ErrorMessage: errMsg,
	})
	if err != nil {
		util.WarnLog("Failed to record scrape attempt: %v", err)
	}
}

// School name extraction. Article and bio text is noisy; a candidate
// has to look like a proper-noun school name and must not look like
// club boilerplate.

var schoolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)High School[:\s]+([A-Za-z\s.'-]+(?:High School|College Prep|Prep|Academy|HS))`),
	regexp.MustCompile(`(?i)High School[:\s]+([A-Za-z\s.'-]+?)(?:\n|Last Club|College|Citizenship|$)`),
	regexp.MustCompile(`(?i)(?:attended|attends)\s+([A-Za-z\s.'-]+(?:High School|College Prep|Prep|Academy))`),
	regexp.MustCompile(`(?i)([A-Z][A-Za-z\s.'-]+(?:College Prep High School|High School|Prep School|Academy))`),
}

// Action words and club names that mark a capture as bio narrative
// rather than a school name
var schoolSkipWords = []string{
	"joined", "signed", "played", "trained", "competed", "fire", "mls",
	"youth", "u-15", "u-17", "u-19", "development", "road", "against",
	"red bulls", "sounders", "galaxy", "united", "fc ", "sc ",
}

// An "Academy" is a club academy, not a school, when any of these
// appear next to it
var clubAcademyWords = []string{"soccer", "football", "fire", "mls", "development"}

var schoolTerms = []string{"high school", "prep", "preparatory", "college prep"}

// ExtractSchool pulls a validated high-school name from article text.
// Patterns are tried in order; the first capture that survives
// validation wins, along with any location found near the mention.
func ExtractSchool(text string) (name, city, state string, ok bool) {
	for _, re := range schoolPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		candidate := cleanSchoolName(m[1])
		if !validSchoolName(candidate) {
			continue
		}

		city, state = extractLocation(text, candidate)
		return candidate, city, state, true
	}

	return "", "", "", false
}

func cleanSchoolName(raw string) string {
	s := normalize.Clean(raw)
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func validSchoolName(name string) bool {
	if len(name) < 4 || len(name) > 80 {
		return false
	}

	lower := strings.ToLower(name)
	switch lower {
	case "n/a", "none", "unknown", "high school", "prep", "academy":
		return false
	}

	for _, word := range schoolSkipWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	// "Academy" counts as a school only when it isn't a club academy
	if strings.Contains(lower, "academy") {
		for _, word := range clubAcademyWords {
			if strings.Contains(lower, word) {
				return false
			}
		}
	} else {
		hasTerm := false
		for _, term := range schoolTerms {
			if strings.Contains(lower, term) {
				hasTerm = true
				break
			}
		}
		if !hasTerm {
			return false
		}
	}

	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}

	return len(strings.Fields(name)) >= 2
}

// extractLocation reads "School, City, ST" style location text near the
// school mention
func extractLocation(text, school string) (string, string) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(school) + `[,\s]+(?:in\s+)?([A-Za-z\s]+),\s*([A-Z]{2})`)
	if err != nil {
		return "", ""
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}

	return normalize.Clean(m[1]), strings.ToUpper(strings.TrimSpace(m[2]))
}
