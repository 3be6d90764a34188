package ingest

import (
	"bytes"
	"context"
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

const wikipediaBase = "https://en.wikipedia.org"

// WikipediaSource reads player articles on Wikipedia. Direct article
// URLs are cheap to probe, so those go first; the search endpoint is
// the fallback, and a single confident hit there redirects straight to
// the article.
type WikipediaSource struct {
	client *fetch.Client
	base   string
}

// NewWikipediaSource creates a Wikipedia lookup source
func NewWikipediaSource(client *fetch.Client) *WikipediaSource {
	return &WikipediaSource{client: client, base: wikipediaBase}
}

// Name returns the precedence key for this source
func (s *WikipediaSource) Name() string {
	return "wikipedia"
}

// Lookup probes candidate article URLs for the player, then falls back
// to a site search. Only US-born players are worth the fetches; the
// high-school angle means nothing for the rest.
func (s *WikipediaSource) Lookup(ctx context.Context, player *store.Player, team *Team) (*reconcile.HighSchoolClaim, error) {
	if !usBorn(player) {
		util.DebugLog("Skipping Wikipedia for %s: not US-born", player.FullName())
		return nil, nil
	}

	slug := strings.ReplaceAll(player.FullName(), " ", "_")
	candidates := []string{
		s.base + "/wiki/" + slug,
		s.base + "/wiki/" + slug + "_(soccer)",
		s.base + "/wiki/" + slug + "_(American_soccer)",
	}

	for _, pageURL := range candidates {
		claim, err := s.checkArticle(ctx, pageURL)
		if err != nil {
			if fe := fetch.AsError(err); fe != nil && fe.Kind == fetch.KindNotFound {
				continue
			}
			return nil, err
		}
		if claim != nil {
			return claim, nil
		}
	}

	return s.search(ctx, player, team)
}

// checkArticle fetches one candidate article and extracts a claim when
// the page is actually about a soccer player
func (s *WikipediaSource) checkArticle(ctx context.Context, pageURL string) (*reconcile.HighSchoolClaim, error) {
	body, finalURL, err := s.client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	text := doc.Find("body").Text()
	if !looksLikeSoccerPage(text) {
		return nil, nil
	}

	return extractWikipediaSchool(text, finalURL), nil
}

func (s *WikipediaSource) search(ctx context.Context, player *store.Player, team *Team) (*reconcile.HighSchoolClaim, error) {
	query := player.FullName() + " soccer"
	if team != nil && team.Name != "" {
		query += " " + team.Name
	}
	searchURL := s.base + "/w/index.php?search=" + url.QueryEscape(query)

	body, finalURL, err := s.client.FetchPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	// A confident search silently redirects to the article itself
	if strings.Contains(finalURL, "/wiki/") && !strings.Contains(finalURL, "Special:Search") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return extractWikipediaSchool(doc.Find("body").Text(), finalURL), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	href, ok := doc.Find(".mw-search-result-heading a").First().Attr("href")
	if !ok || href == "" {
		return nil, nil
	}

	articleURL := href
	if strings.HasPrefix(href, "/") {
		articleURL = s.base + href
	}

	articleBody, articleFinal, err := s.client.FetchPage(ctx, articleURL)
	if err != nil {
		if fe := fetch.AsError(err); fe != nil && fe.Kind == fetch.KindNotFound {
			return nil, nil
		}
		return nil, err
	}

	articleDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(articleBody))
	if err != nil {
		return nil, err
	}

	return extractWikipediaSchool(articleDoc.Find("body").Text(), articleFinal), nil
}

// usBorn reports whether the player looks US-born. The hometown state
// slot carries foreign regions verbatim, so only a real US code counts;
// with nothing on record the lookup gets a chance anyway.
func usBorn(p *store.Player) bool {
	if normalize.IsUSState(p.HometownState) {
		return true
	}
	if strings.Contains(p.Birthplace, "USA") {
		return true
	}
	return p.Birthplace == "" && p.HometownState == ""
}

var soccerPageTerms = []string{
	"soccer", "football", "mls", "midfielder", "forward", "defender", "goalkeeper",
}

// looksLikeSoccerPage guards against landing on an unrelated person's
// article under the same name
func looksLikeSoccerPage(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range soccerPageTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Article prose patterns, in decreasing order of reliability. These
// stay case-sensitive: real school names are proper nouns and the
// anchor words appear mid-sentence.
var wikipediaSchoolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`attended\s+([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory|Academy))`),
	regexp.MustCompile(`graduated\s+from\s+([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory|Academy))`),
	regexp.MustCompile(`played\s+(?:for|at)\s+([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory|Academy))`),
	regexp.MustCompile(`(?:schooled|educated)\s+at\s+([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory|Academy))`),
	regexp.MustCompile(`(?:High school|School)[:\s]+([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory|Academy))`),
	regexp.MustCompile(`([A-Z][a-zA-Z\s.'-]+(?:High School|Prep|Preparatory))\s+in\s+[A-Z][a-z]+`),
	regexp.MustCompile(`([A-Z][a-zA-Z\s.'-]{3,40}(?:High School|College Prep|Prep School|Preparatory School))`),
}

// Wikipedia articles mention the player's clubs and colleges far more
// often than the school, so the word filter here is stricter than the
// club-page one. Academies never pass: on Wikipedia they are club
// academies.
var wikipediaSkipWords = []string{
	"youth", "academy", "mls", "usl", "college", "university",
	"national", "team", "club", "fc ", "sc ", "united",
}

var wikipediaSchoolTerms = []string{"high school", "prep", "preparatory"}

// extractWikipediaSchool applies the article patterns in order and
// returns the first capture that survives validation
func extractWikipediaSchool(text, sourceURL string) *reconcile.HighSchoolClaim {
	for _, re := range wikipediaSchoolPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := cleanSchoolName(m[1])
			if !validWikipediaSchool(name) {
				continue
			}

			city, state := extractWikipediaLocation(text, name)
			return &reconcile.HighSchoolClaim{
				Name:       name,
				City:       city,
				State:      state,
				SourceURL:  sourceURL,
				SourceName: "Wikipedia",
			}
		}
	}

	return nil
}

func validWikipediaSchool(name string) bool {
	if len(name) < 8 || len(name) > 60 {
		return false
	}

	lower := strings.ToLower(name)
	for _, word := range wikipediaSkipWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	for _, term := range wikipediaSchoolTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// extractWikipediaLocation reads "School in City, ST" or
// "School, City, Statename" near the mention. Two-word cities work;
// state may be an abbreviation or a full name.
func extractWikipediaLocation(text, school string) (string, string) {
	re, err := regexp.Compile(regexp.QuoteMeta(school) +
		`[,\s]+(?:in\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?),\s*([A-Z]{2}|[A-Z][a-z]+)`)
	if err != nil {
		return "", ""
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}

	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
