package ingest

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/franz/roster-scout/internal/fetch"
	"github.com/franz/roster-scout/internal/normalize"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

const transfermarktBase = "https://www.transfermarkt.us"

// TransfermarktSource reads player profiles on Transfermarkt, which
// reliably carry birthdate, birthplace, citizenship and metric height
// for players the club pages stay vague about.
type TransfermarktSource struct {
	client *fetch.Client
	base   string
}

// NewTransfermarktSource creates a Transfermarkt lookup source
func NewTransfermarktSource(client *fetch.Client) *TransfermarktSource {
	return &TransfermarktSource{client: client, base: transfermarktBase}
}

// Name returns the precedence key for this source
func (s *TransfermarktSource) Name() string {
	return "transfermarkt"
}

// BioFill holds the facts one Transfermarkt profile yielded, already
// normalized. Zero values mean the profile did not state the fact.
type BioFill struct {
	Birthdate   string
	Birthplace  string
	Citizenship string
	HeightIn    int
	SourceURL   string
}

// Empty reports whether the profile yielded nothing usable
func (f *BioFill) Empty() bool {
	return f.Birthdate == "" && f.Birthplace == "" && f.Citizenship == "" && f.HeightIn == 0
}

// Profile pages render the data sheet as label/value runs. Values stop
// at the next label or a run of spaces.
var (
	tmDOBRe         = regexp.MustCompile(`Date of birth/Age[:\s]+([A-Za-z]{3}\s+\d{1,2},\s+\d{4})`)
	tmBirthplaceRe  = regexp.MustCompile(`Place of birth[:\s]+([^\n]+)`)
	tmCitizenshipRe = regexp.MustCompile(`Citizenship[:\s]+([^\n]+)`)
	tmHeightRe      = regexp.MustCompile(`Height[:\s]+(\d+[,.]\d+\s*m)`)

	tmBirthplaceEndRe  = regexp.MustCompile(`\s{2,}|Citizenship|Height`)
	tmCitizenshipEndRe = regexp.MustCompile(`\s{2,}|Height|Position`)
)

// FindProfile searches Transfermarkt for the player and parses the
// first profile hit. Nil without error means no profile matched. The
// bare name is the whole query: adding the league breaks the search.
func (s *TransfermarktSource) FindProfile(ctx context.Context, player *store.Player) (*BioFill, error) {
	searchURL := s.base + "/schnellsuche/ergebnis/schnellsuche?query=" + url.QueryEscape(player.FullName())

	body, _, err := s.client.FetchPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	href, ok := doc.Find("a[href*='/profil/spieler/']").First().Attr("href")
	if !ok || href == "" {
		return nil, nil
	}
	if !strings.HasPrefix(href, "http") {
		href = s.base + href
	}

	profileBody, finalURL, err := s.client.FetchPage(ctx, href)
	if err != nil {
		return nil, err
	}

	return ParseTransfermarktProfile(profileBody, finalURL)
}

// ParseTransfermarktProfile extracts bio facts from a profile page
func ParseTransfermarktProfile(html []byte, profileURL string) (*BioFill, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	text := doc.Find("body").Text()
	fill := &BioFill{SourceURL: profileURL}

	if m := tmDOBRe.FindStringSubmatch(text); m != nil {
		fill.Birthdate = normalize.ParseDate(m[1])
	}
	if m := tmBirthplaceRe.FindStringSubmatch(text); m != nil {
		place := m[1]
		if loc := tmBirthplaceEndRe.FindStringIndex(place); loc != nil {
			place = place[:loc[0]]
		}
		fill.Birthplace = normalize.Clean(place)
	}
	if m := tmCitizenshipRe.FindStringSubmatch(text); m != nil {
		cit := m[1]
		if loc := tmCitizenshipEndRe.FindStringIndex(cit); loc != nil {
			cit = cit[:loc[0]]
		}
		fill.Citizenship = normalize.Clean(cit)
	}
	if m := tmHeightRe.FindStringSubmatch(text); m != nil {
		fill.HeightIn = normalize.ParseHeightMetric(m[1])
	}

	return fill, nil
}

// GapFiller walks players a bio fact is still missing for and offers
// Transfermarkt's answer to the merge. Precedence does the gating: a
// fact the club site already stated outranks anything found here.
type GapFiller struct {
	store      *store.Store
	source     *TransfermarktSource
	reconciler *reconcile.Reconciler
	runID      string
}

// GapFillerConfig holds gap filler configuration
type GapFillerConfig struct {
	Store      *store.Store
	Source     *TransfermarktSource
	Reconciler *reconcile.Reconciler
	RunID      string
}

// NewGapFiller creates a new GapFiller
func NewGapFiller(cfg *GapFillerConfig) *GapFiller {
	return &GapFiller{
		store:      cfg.Store,
		source:     cfg.Source,
		reconciler: cfg.Reconciler,
		runID:      cfg.RunID,
	}
}

// GapFillStats describes one gap-fill pass
type GapFillStats struct {
	Players int // players examined
	Filled  int // players that gained at least one fact
	NoMatch int // players without a usable profile
	Errors  int // lookup or merge failures
}

// Fill runs one pass over players missing the given field. Lookup
// failures are recorded and the pass continues; store failures abort.
func (g *GapFiller) Fill(ctx context.Context, field string, team *Team, season, limit int) (*GapFillStats, error) {
	teamName := ""
	if team != nil {
		teamName = team.Name
	}

	players, err := g.store.GetPlayersMissingField(field, teamName, season, limit)
	if err != nil {
		return nil, err
	}

	stats := &GapFillStats{Players: len(players)}
	if len(players) == 0 {
		util.InfoLog("No players missing %s", field)
		return stats, nil
	}

	util.InfoLog("Filling %s for %d player(s) from Transfermarkt...", field, len(players))

	for i, player := range players {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		util.DebugLog("[%d/%d] %s", i+1, len(players), player.FullName())

		fill, err := g.source.FindProfile(ctx, player)
		if err != nil {
			stats.Errors++
			g.audit(team, "", "error", 0, err.Error())
			continue
		}
		if fill == nil || fill.Empty() {
			stats.NoMatch++
			g.audit(team, "", "warning", 0, "")
			continue
		}
		g.audit(team, fill.SourceURL, "success", 1, "")

		city, state := normalize.ParseHometown(fill.Birthplace)
		obs := &reconcile.PlayerObservation{
			Team:          player.Team,
			Season:        player.Season,
			FirstName:     player.FirstName,
			LastName:      player.LastName,
			HeightIn:      fill.HeightIn,
			Birthdate:     fill.Birthdate,
			Birthplace:    fill.Birthplace,
			Citizenship:   fill.Citizenship,
			HometownCity:  city,
			HometownState: state,
			Source:        g.source.Name(),
		}

		res, err := g.reconciler.Player(obs)
		if err != nil {
			if errors.Is(err, util.ErrIntegrity) {
				stats.Errors++
				continue
			}
			return stats, err
		}
		if len(res.Adopted) > 0 {
			util.InfoLog("  %s: %s", player.FullName(), strings.Join(res.Adopted, ", "))
			stats.Filled++
		}
	}

	util.SuccessLog("Filled %s for %d/%d player(s)", field, stats.Filled, stats.Players)
	return stats, nil
}

func (g *GapFiller) audit(team *Team, pageURL, status string, records int, errMsg string) {
	slug := ""
	if team != nil {
		slug = team.Slug
	}
	err := g.store.AppendScrapeAttempt(&store.ScrapeAttempt{
		RunID:        g.runID,
		Source:       g.source.Name(),
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
