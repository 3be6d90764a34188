package ingest

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/franz/roster-scout/internal/fetch"
	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/store"
	"github.com/franz/roster-scout/internal/util"
)

// AnnounceSource mines the club's own site for high-school mentions.
// Homegrown signing announcements are the best of all sources: the
// club writes up the player's schooling when it signs its own academy
// kid. Announcement URLs follow a few guessable shapes, so those are
// probed directly before falling back to the player's bio page and
// the news links on it.
type AnnounceSource struct {
	client *fetch.Client
}

// NewAnnounceSource creates a club-site lookup source
func NewAnnounceSource(client *fetch.Client) *AnnounceSource {
	return &AnnounceSource{client: client}
}

// Name returns the precedence key for this source
func (s *AnnounceSource) Name() string {
	return "club_announcement"
}

// Lookup probes signing announcement URLs, then the bio page, then up
// to five news links found on the bio page
func (s *AnnounceSource) Lookup(ctx context.Context, player *store.Player, team *Team) (*reconcile.HighSchoolClaim, error) {
	if team == nil || team.BaseURL() == "" {
		return nil, nil
	}
	base := team.BaseURL()
	slug := playerSlug(player)

	for _, pageURL := range announceCandidates(base, team.Slug, slug) {
		claim, err := s.extractFrom(ctx, pageURL, "Club Signing Announcement")
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

	return s.checkBioPage(ctx, player, base, slug)
}

// checkBioPage reads the player's bio page, then follows signing-
// related news links from it
func (s *AnnounceSource) checkBioPage(ctx context.Context, player *store.Player, base, slug string) (*reconcile.HighSchoolClaim, error) {
	bioURL := player.BioURL
	if bioURL == "" {
		bioURL = base + "/players/" + slug + "/"
	}

	body, finalURL, err := s.client.FetchPage(ctx, bioURL)
	if err != nil {
		if fe := fetch.AsError(err); fe != nil && fe.Kind == fetch.KindNotFound {
			return nil, nil
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if claim := claimFromText(doc.Find("body").Text(), finalURL, "Player Bio Page"); claim != nil {
		return claim, nil
	}

	// The bio page links its signing story more often than it states
	// the school itself. Only the first few news links are worth it.
	var claim *reconcile.HighSchoolClaim
	doc.Find("a[href*='/news/']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= 5 || ctx.Err() != nil {
			return false
		}

		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		anchor := strings.ToLower(sel.Text())
		if !strings.Contains(anchor, "sign") && !strings.Contains(anchor, "homegrown") {
			return true
		}

		if !strings.HasPrefix(href, "http") {
			href = base + href
		}

		c, err := s.extractFrom(ctx, href, "Club Signing Announcement")
		if err != nil {
			util.DebugLog("News link %s failed: %v", href, err)
			return true
		}
		if c != nil {
			claim = c
			return false
		}
		return true
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return claim, nil
}

func (s *AnnounceSource) extractFrom(ctx context.Context, pageURL, display string) (*reconcile.HighSchoolClaim, error) {
	body, finalURL, err := s.client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return claimFromText(doc.Find("body").Text(), finalURL, display), nil
}

// announceCandidates builds the signing announcement URL shapes clubs
// actually use. The club prefix is the team slug without a trailing
// fc/sc marker.
func announceCandidates(base, teamSlug, playerSlug string) []string {
	prefix := strings.TrimSuffix(strings.TrimSuffix(teamSlug, "-fc"), "-sc")
	return []string{
		base + "/news/" + prefix + "-signs-" + playerSlug,
		base + "/news/" + playerSlug + "-signs",
		base + "/news/" + playerSlug + "-homegrown",
	}
}

func playerSlug(player *store.Player) string {
	return strings.ToLower(strings.ReplaceAll(player.FullName(), " ", "-"))
}

// claimFromText runs the shared school extractor over page text and
// wraps a hit in a sourced claim
func claimFromText(text, sourceURL, display string) *reconcile.HighSchoolClaim {
	name, city, state, ok := ExtractSchool(text)
	if !ok {
		return nil
	}
	return &reconcile.HighSchoolClaim{
		Name:       name,
		City:       city,
		State:      state,
		SourceURL:  sourceURL,
		SourceName: display,
	}
}
