package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Feet-inches forms: 6'1", 6' 1", 6-1, 6′1″, plus the curly quotes
// CMS text editors substitute
var feetInchesRe = regexp.MustCompile(`^(\d)\s*['′’-]\s*(\d{1,2})\s*["″”]?$`)

// ParseHeight normalizes a height string to whole inches. Accepted forms
// are feet-inches (6'1", 6-1) and bare inches (73). Anything else,
// including out-of-range values, yields 0.
func ParseHeight(raw string) int {
	s := Clean(raw)
	if s == "" {
		return 0
	}

	if m := feetInchesRe.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches, _ := strconv.Atoi(m[2])
		if inches > 11 {
			return 0
		}
		return feet*12 + inches
	}

	// Bare integer is taken as inches when it lands in a human range
	if n, err := strconv.Atoi(s); err == nil && n >= 48 && n <= 90 {
		return n
	}

	return 0
}

// Metric forms as printed on European profile sites: 1,85 m or 1.85m
var metricHeightRe = regexp.MustCompile(`^(\d)[,.](\d{2})\s*m$`)

// ParseHeightMetric converts a metric height string like "1,85 m" to whole
// inches, rounded to the nearest inch. Unparseable input yields 0.
func ParseHeightMetric(raw string) int {
	s := strings.ToLower(Clean(raw))
	if s == "" {
		return 0
	}

	if m := metricHeightRe.FindStringSubmatch(s); m != nil {
		meters, _ := strconv.Atoi(m[1])
		centis, _ := strconv.Atoi(m[2])
		cm := meters*100 + centis
		inches := int(float64(cm)/2.54 + 0.5)
		if inches < 48 || inches > 90 {
			return 0
		}
		return inches
	}

	return 0
}

var weightRe = regexp.MustCompile(`^(\d{2,3})\s*(?:lbs?\.?)?$`)

// ParseWeight normalizes a weight string like "170 lbs" to whole pounds.
// Implausible values yield 0.
func ParseWeight(raw string) int {
	s := strings.ToLower(Clean(raw))
	if s == "" {
		return 0
	}

	if m := weightRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 80 && n <= 350 {
			return n
		}
	}

	return 0
}

// ParseJersey normalizes a jersey number string like "#21" or "21".
// Unparseable input yields 0, which also stands for "no number".
func ParseJersey(raw string) int {
	s := strings.TrimPrefix(Clean(raw), "#")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 99 {
		return 0
	}
	return n
}

// ParseScore normalizes one side of a score. Matches that have not been
// played have no score, represented as -1 so that 0 stays a real result.
func ParseScore(raw string) int {
	s := Clean(raw)
	if s == "" {
		return -1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
