package normalize

import "strings"

// usStates maps full state names to postal abbreviations
var usStates = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC", "washington dc": "DC", "washington d.c.": "DC",
}

// ParseHometown splits a hometown string like "Chicago, IL" or
// "Chicago, Illinois" into city and two-letter state. Non-US places keep
// the region text as-is in the state slot; a string with no comma is all
// city.
func ParseHometown(raw string) (string, string) {
	s := Clean(raw)
	if s == "" {
		return "", ""
	}

	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return s, ""
	}

	city := strings.TrimSpace(s[:idx])
	region := strings.TrimSpace(s[idx+1:])

	// Multi-comma forms like "Chicago, IL, USA" keep the first segment as
	// the city and re-resolve the rest
	if i := strings.Index(city, ","); i >= 0 {
		inner, innerRegion := ParseHometown(city)
		if abbrevState(innerRegion) != "" || len(innerRegion) == 2 {
			return inner, normalizeState(innerRegion)
		}
		city = strings.TrimSpace(city[:i])
	}

	return city, normalizeState(region)
}

var usStateCodes = func() map[string]bool {
	set := make(map[string]bool, len(usStates))
	for _, abbr := range usStates {
		set[abbr] = true
	}
	return set
}()

// IsUSState reports whether the code is a US postal abbreviation.
// ParseHometown keeps foreign regions in the state slot, so callers
// that care about US-ness cannot test for emptiness alone.
func IsUSState(code string) bool {
	return usStateCodes[strings.ToUpper(strings.TrimSpace(code))]
}

func normalizeState(region string) string {
	if region == "" {
		return ""
	}
	if len(region) == 2 {
		return strings.ToUpper(region)
	}
	if abbr := abbrevState(region); abbr != "" {
		return abbr
	}
	return region
}

func abbrevState(region string) string {
	return usStates[strings.ToLower(strings.TrimSpace(region))]
}
