package normalize

import (
	"strings"
	"unicode"
)

// Generational suffixes attach to the last name instead of standing alone,
// so "Ken Griffey Jr." splits as ("Ken", "Griffey Jr.")
var nameSuffixes = map[string]bool{
	"jr":  true,
	"jr.": true,
	"sr":  true,
	"sr.": true,
	"ii":  true,
	"iii": true,
	"iv":  true,
}

// SplitName splits a full display name into first and last name. The
// rightmost token is the last name, so multi-word first names survive
// whole. A trailing generational suffix is never the last name on its
// own; it attaches to the token before it. Single-token names become a
// bare last name with an empty first name.
func SplitName(full string) (string, string) {
	tokens := strings.Fields(Clean(full))
	if len(tokens) == 0 {
		return "", ""
	}
	if len(tokens) == 1 {
		return "", tokens[0]
	}

	cut := len(tokens) - 1
	last := tokens[cut]
	if nameSuffixes[strings.ToLower(last)] {
		cut--
		last = tokens[cut] + " " + last
	}

	return strings.Join(tokens[:cut], " "), last
}

// SlugToName recovers a display name from a URL slug like
// "christopher-cupps", used when a roster page carries no readable name
func SlugToName(slug string) (string, string) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return "", ""
	}

	parts := strings.Split(slug, "-")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, capitalizeWord(p))
	}

	return SplitName(strings.Join(words, " "))
}

// capitalizeWord capitalizes the first letter of a word.
// Mixed-case input like "McCarthy" is preserved.
func capitalizeWord(word string) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)

	hasLower := false
	hasUpper := false
	for _, r := range runes {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				hasLower = true
			}
			if unicode.IsUpper(r) {
				hasUpper = true
			}
		}
	}

	if (hasUpper && !hasLower) || (hasLower && !hasUpper) {
		runes[0] = unicode.ToUpper(runes[0])
		for i := 1; i < len(runes); i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	} else {
		// Mixed case - just ensure the first letter is uppercase
		runes[0] = unicode.ToUpper(runes[0])
	}

	return string(runes)
}
