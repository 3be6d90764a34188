package normalize

import (
	"regexp"
	"strings"
)

// schoolSuffixRes strip trailing institution markers when building the
// matching key. Each pattern is applied once, in order, so "College Prep
// High School" loses both markers but an embedded "Prep" survives.
// A name that consists only of a marker is left alone.
var schoolSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`\s+high\s+school$`),
	regexp.MustCompile(`\s+h\.?\s?s\.?$`),
	regexp.MustCompile(`\s+senior\s+high$`),
	regexp.MustCompile(`\s+secondary\s+school$`),
	regexp.MustCompile(`\s+preparatory\s+school$`),
	regexp.MustCompile(`\s+prep\s+school$`),
	regexp.MustCompile(`\s+preparatory$`),
	regexp.MustCompile(`\s+college\s+prep$`),
	regexp.MustCompile(`\s+academy$`),
}

// SchoolKey produces the normalized matching key for a high-school name.
// The key, not the raw spelling, is what reference entries join on:
// "Walter Payton College Prep" and "Walter Payton College Prep High
// School" both key to "walter payton".
func SchoolKey(raw string) string {
	s := strings.ToLower(Clean(raw))
	if s == "" {
		return ""
	}

	for _, re := range schoolSuffixRes {
		s = re.ReplaceAllString(s, "")
	}

	s = removePunctuation(s)
	s = collapseWhitespace(s)

	return s
}
