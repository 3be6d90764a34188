// Package normalize converts raw scraped strings into canonical forms.
// Every function is total: any input maps to either a canonical value or
// the zero value, never an error. Unparseable input must not abort a
// scrape, it just yields an empty field.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Clean performs basic string cleaning (Unicode NFC, trim, collapse)
func Clean(s string) string {
	if s == "" {
		return ""
	}

	// Unicode NFC normalization
	s = norm.NFC.String(s)

	// Collapse whitespace, including non-breaking spaces from HTML
	s = strings.ReplaceAll(s, " ", " ")
	s = collapseWhitespace(s)

	return s
}

// collapseWhitespace replaces runs of whitespace with a single space
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// removePunctuation strips punctuation that varies between spellings of
// the same name
func removePunctuation(s string) string {
	replacer := strings.NewReplacer(
		".", "",
		",", "",
		"'", "",
		"’", "",
		"\"", "",
		"(", "",
		")", "",
		"-", " ",
		"&", "and",
		"/", " ",
	)
	return replacer.Replace(s)
}
