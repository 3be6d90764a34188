package ingest

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/schollz/progressbar/v3"

	"github.com/franz/roster-scout/internal/fetch"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/report"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

// Ingestor runs the roster and schedule stages for one team: fetch the
// listing page, fan the bio fetches out to a bounded worker pool, and
// merge the observations through the reconciler. Merging stays on the
// calling goroutine so the store sees a single writer.
type Ingestor struct {
	store       *store.Store
	client      *fetch.Client
	reconciler  *reconcile.Reconciler
	logger      *report.EventLogger
	concurrency int
	runID       string
}

// IngestorConfig holds ingestor configuration
type IngestorConfig struct {
	Store       *store.Store
	Client      *fetch.Client
	Reconciler  *reconcile.Reconciler
	Logger      *report.EventLogger
	Concurrency int
	RunID       string
}

// NewIngestor creates a new Ingestor
func NewIngestor(cfg *IngestorConfig) *Ingestor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Ingestor{
		store:       cfg.Store,
		client:      cfg.Client,
		reconciler:  cfg.Reconciler,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		runID:       cfg.RunID,
	}
}

// RosterStats describes one roster pass
type RosterStats struct {
	BioLinks int // player links discovered on the roster page
	Players  int // observations merged
	Created  int // players inserted for the first time
	Errors   int // bio fetch or per-record merge failures
}

// bioResult carries one worker's outcome back to the merge loop
type bioResult struct {
	url string
	bio *BioPage
	err error
}

// IngestRoster fetches the team's roster page, follows every player bio
// link, and merges the parsed bios as club-site observations. Bio fetch
// failures are logged and audited without stopping the pass; a store
// failure aborts it.
func (ing *Ingestor) IngestRoster(ctx context.Context, team *Team, season int) (*RosterStats, error) {
	util.InfoLog("Ingesting roster: %s", team.Name)
	stats := &RosterStats{}

	fetchStart := time.Now()
	body, finalURL, err := ing.client.FetchPage(ctx, team.RosterURL)
	ing.logger.LogFetch("club_site", team.RosterURL, time.Since(fetchStart), err)
	if err != nil {
		util.ErrorLog("Failed to fetch roster page for %s: %v", team.Name, err)
		ing.audit("roster", team, team.RosterURL, "error", 0, err.Error())
		stats.Errors++
		return stats, nil
	}

	links, err := DiscoverBioLinks(body, finalURL)
	if err != nil {
		ing.audit("roster", team, finalURL, "error", 0, err.Error())
		stats.Errors++
		return stats, nil
	}
	if len(links) == 0 {
		util.WarnLog("No player links found on %s", finalURL)
		ing.audit("roster", team, finalURL, "warning", 0, "no player links found")
		ing.logger.LogRosterPage(team.Name, "club_site", 0)
		return stats, nil
	}

	stats.BioLinks = len(links)
	ing.audit("roster", team, finalURL, "success", len(links), "")
	ing.logger.LogRosterPage(team.Name, "club_site", len(links))
	util.InfoLog("Found %d player link(s), fetching bios...", len(links))

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string, len(links))
	for _, link := range links {
		jobs <- link
	}
	close(jobs)

	results := make(chan *bioResult, ing.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < ing.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bioURL := range jobs {
				if workCtx.Err() != nil {
					return
				}
				res := &bioResult{url: bioURL}
				res.bio, res.err = ing.fetchBio(workCtx, bioURL)
				select {
				case results <- res:
				case <-workCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Progress bar only when stdout is a terminal
	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		width := min(40, max(10, util.TerminalWidth()-40))
		bar = progressbar.NewOptions(len(links),
			progressbar.OptionSetDescription("Fetching bios"),
			progressbar.OptionSetWidth(width),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	var mergeErr error
	done := 0
	for res := range results {
		done++
		if bar != nil {
			bar.Add(1)
		} else if done%10 == 0 || done == len(links) {
			util.InfoLog("Progress: %d/%d bios", done, len(links))
		}

		if res.err != nil {
			stats.Errors++
			util.WarnLog("Failed to fetch bio %s: %v", res.url, res.err)
			ing.logger.LogError(report.EventFetch, res.url, res.err)
			ing.audit("player_bio", team, res.url, "error", 0, res.err.Error())
			continue
		}
		if mergeErr != nil {
			continue // store already failed, drain the remaining results
		}

		obs := observationFromBio(res.bio, team, season, res.url)
		if obs.FirstName == "" && obs.LastName == "" {
			stats.Errors++
			ing.audit("player_bio", team, res.url, "warning", 0, "no player name in bio URL")
			continue
		}

		pr, err := ing.reconciler.Player(obs)
		if err != nil {
			if errors.Is(err, util.ErrIntegrity) {
				stats.Errors++
				continue
			}
			mergeErr = err
			cancel()
			continue
		}

		stats.Players++
		if pr.Created {
			stats.Created++
		}
		ing.audit("player_bio", team, res.url, "success", 1, "")
	}

	if bar != nil {
		bar.Finish()
	}
	if mergeErr != nil {
		return stats, mergeErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	util.SuccessLog("Roster complete for %s: %d bios, %d players merged (%d new), %d errors",
		team.Name, stats.BioLinks, stats.Players, stats.Created, stats.Errors)
	return stats, nil
}

// fetchBio retrieves and parses one bio page. The requested URL, not
// the final one, feeds the parser: the slug lives in the link the
// roster page carried, and redirects sometimes land on slugless pages.
func (ing *Ingestor) fetchBio(ctx context.Context, bioURL string) (*BioPage, error) {
	body, err := ing.client.Fetch(ctx, bioURL)
	if err != nil {
		return nil, err
	}
	return ParseBioPage(body, bioURL)
}

// observationFromBio shapes one parsed bio into a merge observation
func observationFromBio(bio *BioPage, team *Team, season int, bioURL string) *reconcile.PlayerObservation {
	return &reconcile.PlayerObservation{
		Team:          team.Name,
		Season:        season,
		FirstName:     bio.FirstName,
		LastName:      bio.LastName,
		Position:      bio.Position,
		JerseyNumber:  bio.JerseyNumber,
		HeightIn:      bio.HeightIn,
		WeightLb:      bio.WeightLb,
		Birthdate:     bio.Birthdate,
		Birthplace:    bio.Birthplace,
		HometownCity:  bio.HometownCity,
		HometownState: bio.HometownState,
		HeadshotURL:   bio.HeadshotURL,
		BioURL:        bioURL,
		Source:        "club_site",
	}
}

// ScheduleStats describes one schedule pass
type ScheduleStats struct {
	Matches int // observations parsed from the page
	Created int // fixtures seen for the first time
	Updated int // fixtures already on file
	Errors  int // unkeyable observations
}

// IngestSchedule fetches and merges the team's schedule page. Fixture
// rows are plain upserts keyed by match id; observations that cannot
// be keyed are counted and dropped.
func (ing *Ingestor) IngestSchedule(ctx context.Context, team *Team, season int) (*ScheduleStats, error) {
	util.InfoLog("Ingesting schedule: %s", team.Name)
	stats := &ScheduleStats{}

	if team.ScheduleURL == "" {
		util.WarnLog("No schedule URL configured for %s", team.Name)
		return stats, nil
	}

	fetchStart := time.Now()
	body, finalURL, err := ing.client.FetchPage(ctx, team.ScheduleURL)
	ing.logger.LogFetch("club_site", team.ScheduleURL, time.Since(fetchStart), err)
	if err != nil {
		util.ErrorLog("Failed to fetch schedule page for %s: %v", team.Name, err)
		ing.audit("schedule", team, team.ScheduleURL, "error", 0, err.Error())
		stats.Errors++
		return stats, nil
	}

	obs, err := ParseSchedulePage(body, team, season)
	if err != nil {
		ing.audit("schedule", team, finalURL, "error", 0, err.Error())
		stats.Errors++
		return stats, nil
	}
	if len(obs) == 0 {
		util.WarnLog("No matches found on %s", finalURL)
		ing.audit("schedule", team, finalURL, "warning", 0, "no matches found")
		return stats, nil
	}

	stats.Matches = len(obs)
	for _, m := range obs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		m.Source = "club_site"

		res, err := ing.reconciler.Schedule(m)
		if err != nil {
			if errors.Is(err, util.ErrIntegrity) {
				stats.Errors++
				util.DebugLog("Skipping unkeyable match: %v", err)
				continue
			}
			return stats, err
		}
		if res.Created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	ing.audit("schedule", team, finalURL, "success", stats.Created+stats.Updated, "")
	util.SuccessLog("Schedule complete for %s: %d matches (%d new, %d updated), %d skipped",
		team.Name, stats.Matches, stats.Created, stats.Updated, stats.Errors)
	return stats, nil
}

// audit appends one attempt row, best effort
func (ing *Ingestor) audit(source string, team *Team, pageURL, status string, records int, errMsg string) {
	slug := ""
	if team != nil {
		slug = team.Slug
	}
	err := ing.store.AppendScrapeAttempt(&store.ScrapeAttempt{
		RunID:        ing.runID,
		Source:       source,
		TeamSlug:     slug,
		URL:          pageURL,
		Status:       status,
		RecordsFound: records,
		ErrorMessage: errMsg,
	})
	if err != nil {
		util.WarnLog("Failed to record scrape attempt: %v", err)
	}
}

// DiscoverBioLinks collects the player bio URLs a roster page links to,
// in page order. Index links are skipped and repeats collapse on the
// query-stripped URL, so card and table views of the same roster yield
// one link per player.
func DiscoverBioLinks(html []byte, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	base := originOf(pageURL)

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/players/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		if strings.HasSuffix(href, "/players/") || strings.Contains(href, "/players/index") {
			return
		}
		if !strings.HasPrefix(href, "http") {
			if base == "" || !strings.HasPrefix(href, "/") {
				return
			}
			href = base + href
		}

		key := strings.TrimRight(strings.SplitN(href, "?", 2)[0], "/")
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, href)
	})

	return links, nil
}

// originOf returns the scheme://host prefix of a URL, or "" when the
// URL has no host
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
