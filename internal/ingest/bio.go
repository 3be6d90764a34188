package ingest

import (
	"bytes"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/franz/roster-scout/internal/normalize"
)

// BioPage holds the facts one player bio page yielded, already
// normalized. Zero values mean the page did not state the fact.
type BioPage struct {
	FirstName string
	LastName  string

	Position      string
	JerseyNumber  int
	HeightIn      int
	WeightLb      int
	Birthdate     string
	Birthplace    string
	HometownCity  string
	HometownState string
	HeadshotURL   string
}

// Label patterns tried against the page text. Club CMSes disagree on
// punctuation, casing and date style, so matching is case-insensitive
// and birthdates get several shots.
var (
	bioSlugRe   = regexp.MustCompile(`/players/([^/?#]+)`)
	positionRe  = regexp.MustCompile(`(?i)Position[:\s]+([A-Za-z]+)`)
	bioHeightRe = regexp.MustCompile(`(?i)Height[:\s]+(\d+['′’]\s*\d*["″”]?)`)
	bioWeightRe = regexp.MustCompile(`(?i)Weight[:\s]+(\d+)`)
	jerseyNoRe  = regexp.MustCompile(`(?i)\b(?:Jersey\s*|Shirt\s*)?(?:Number|No\.)[:\s]+#?(\d{1,2})\b`)

	birthdateRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})\s*\(\d+\)`),
		regexp.MustCompile(`(?i)Date of birth[:\s]+(\d{1,2}\.\d{1,2}\.\d{4})`),
		regexp.MustCompile(`(?i)Born[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
		regexp.MustCompile(`(?i)DOB[:\s]+(\d{1,2}/\d{1,2}/\d{4})`),
	}

	birthplaceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Birthplace[:\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Place of birth[:\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Born in[:\s]+([^\n\r]+)`),
	}

	// Rendered bio text runs labels together on one line; a birthplace
	// capture stops at the next label or a run of spaces
	bioFieldEndRe = regexp.MustCompile(`\s{2,}|Height|Weight|Position`)
)

// SlugFromURL extracts the player slug from a bio URL like
// "/players/christopher-cupps/". Empty when the URL has no player path.
func SlugFromURL(bioURL string) string {
	m := bioSlugRe.FindStringSubmatch(bioURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseBioPage extracts player facts from one bio page. The name comes
// from the URL slug: bio markup rarely carries a clean name field, but
// the slug always does.
func ParseBioPage(html []byte, bioURL string) (*BioPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	bio := &BioPage{}

	if slug := SlugFromURL(bioURL); slug != "" {
		bio.FirstName, bio.LastName = normalize.SlugToName(slug)
	}

	text := doc.Find("body").Text()

	if m := positionRe.FindStringSubmatch(text); m != nil {
		bio.Position = normalize.Clean(m[1])
	}
	if m := bioHeightRe.FindStringSubmatch(text); m != nil {
		bio.HeightIn = normalize.ParseHeight(m[1])
	}
	if m := bioWeightRe.FindStringSubmatch(text); m != nil {
		bio.WeightLb = normalize.ParseWeight(m[1])
	}
	if m := jerseyNoRe.FindStringSubmatch(text); m != nil {
		bio.JerseyNumber = normalize.ParseJersey(m[1])
	}

	for _, re := range birthdateRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if d := normalize.ParseDate(m[1]); d != "" {
				bio.Birthdate = d
				break
			}
		}
	}

	for _, re := range birthplaceRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		place := m[1]
		if loc := bioFieldEndRe.FindStringIndex(place); loc != nil {
			place = place[:loc[0]]
		}
		place = normalize.Clean(place)
		if place != "" {
			bio.Birthplace = place
			bio.HometownCity, bio.HometownState = normalize.ParseHometown(place)
		}
		break
	}

	bio.HeadshotURL = headshotURL(doc)

	return bio, nil
}

// headshotURL finds the player photo. Dedicated headshot images first,
// then the league CDN, then the page's og:image which club CMSes set to
// the player photo.
func headshotURL(doc *goquery.Document) string {
	if src, ok := doc.Find("img[src*='headshot']").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find("img[src*='images.mlssoccer.com']").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find("meta[property='og:image']").First().Attr("content"); ok && src != "" {
		return src
	}
	return ""
}
