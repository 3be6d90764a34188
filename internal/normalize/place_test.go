package normalize

import (
	"testing"
)

func TestParseHometown(t *testing.T) {
	tests := []struct {
		input string
		city  string
		state string
	}{
		// Two-letter state codes are uppercased
		{"Chicago, IL", "Chicago", "IL"},
		{"Chicago, il", "Chicago", "IL"},

		// Full state names map to their abbreviation
		{"Chicago, Illinois", "Chicago", "IL"},
		{"Nashville, Tennessee", "Nashville", "TN"},
		{"Washington, District of Columbia", "Washington", "DC"},

		// Trailing country segments are dropped when a state is present
		{"Chicago, IL, USA", "Chicago", "IL"},
		{"Naperville, Illinois, USA", "Naperville", "IL"},

		// Non-US regions are kept as-is
		{"San Juan, Puerto Rico", "San Juan", "Puerto Rico"},
		{"London, England", "London", "England"},

		// No comma means no state
		{"Chicago", "Chicago", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		city, state := ParseHometown(tt.input)
		if city != tt.city || state != tt.state {
			t.Errorf("ParseHometown(%q) = (%q, %q), expected (%q, %q)",
				tt.input, city, state, tt.city, tt.state)
		}
	}
}

func TestIsUSState(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"IL", true},
		{"il", true},
		{" NY ", true},
		{"DC", true},
		{"Chile", false},
		{"England", false},
		{"ZZ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsUSState(tt.code); got != tt.want {
			t.Errorf("IsUSState(%q) = %v, expected %v", tt.code, got, tt.want)
		}
	}
}
