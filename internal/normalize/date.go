package normalize

import (
	"regexp"
	"time"
)

// dateFormats are tried in order. Two-digit-year layouts are deliberately
// absent: the century would be a guess, so such input stays unknown.
var dateFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"01/02/2006",
	"1/2/2006",
	"1.2.2006",
}

// Bio pages often append the age: "May 26, 2008 (17)"
var trailingAgeRe = regexp.MustCompile(`\s*\(\d{1,3}\)$`)

// ParseDate normalizes a scraped date string to ISO form (YYYY-MM-DD).
// Unrecognized or ambiguous input yields the empty string, never a guess:
// a day/month-swapped value like "26/05/2008" fails every layout and is
// dropped rather than misread.
func ParseDate(raw string) string {
	s := Clean(raw)
	if s == "" {
		return ""
	}

	s = trailingAgeRe.ReplaceAllString(s, "")

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return ""
}
