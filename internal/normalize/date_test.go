package normalize

import (
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Already ISO
		{"2008-05-26", "2008-05-26"},

		// Long and short month names
		{"May 26, 2008", "2008-05-26"},
		{"May 26 2008", "2008-05-26"},
		{"Jan 2, 2007", "2007-01-02"},
		{"26 May 2008", "2008-05-26"},

		// Numeric US forms
		{"05/26/2008", "2008-05-26"},
		{"5/26/2008", "2008-05-26"},
		{"5.26.2008", "2008-05-26"},

		// Trailing age annotation is stripped
		{"May 26, 2008 (17)", "2008-05-26"},
		{"2008-05-26 (17)", "2008-05-26"},

		// Two-digit years are ambiguous, rejected rather than guessed
		{"05/26/08", ""},
		{"5/26/08", ""},

		// Day/month-swapped input fails every layout
		{"26/05/2008", ""},

		// Garbage
		{"unknown", ""},
		{"N/A", ""},
		{"", ""},
	}

	for _, tt := range tests {
		result := ParseDate(tt.input)
		if result != tt.expected {
			t.Errorf("ParseDate(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
