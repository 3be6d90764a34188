package normalize

import (
	"testing"
)

func TestParseHeight(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		// Feet-inches forms
		{`6'1"`, 73},
		{"6'1", 73},
		{"6-1", 73},
		{"5-11", 71},
		{"6' 2\"", 74},
		{"5′9″", 69},
		{"6’2”", 74},

		// Bare inches
		{"73", 73},
		{"68", 68},

		// Out of range or nonsense
		{"6-13", 0},
		{"12", 0},
		{"200", 0},
		{"tall", 0},
		{"", 0},
	}

	for _, tt := range tests {
		result := ParseHeight(tt.input)
		if result != tt.expected {
			t.Errorf("ParseHeight(%q) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseHeightMetric(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"1,85 m", 73},
		{"1.80m", 71},
		{"1,75 m", 69},
		{"1,93 m", 76},

		// Not metric, or malformed
		{"185 cm", 0},
		{`6'1"`, 0},
		{"1,2 m", 0},
		{"", 0},
	}

	for _, tt := range tests {
		result := ParseHeightMetric(tt.input)
		if result != tt.expected {
			t.Errorf("ParseHeightMetric(%q) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"170 lbs", 170},
		{"170lbs", 170},
		{"170 lb.", 170},
		{"170", 170},
		{"95", 95},

		// Implausible or unparseable
		{"20", 0},
		{"900", 0},
		{"heavy", 0},
		{"", 0},
	}

	for _, tt := range tests {
		result := ParseWeight(tt.input)
		if result != tt.expected {
			t.Errorf("ParseWeight(%q) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseJersey(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"21", 21},
		{"#21", 21},
		{"7", 7},
		{"99", 99},
		{"0", 0},
		{"100", 0},
		{"GK", 0},
		{"", 0},
	}

	for _, tt := range tests {
		result := ParseJersey(tt.input)
		if result != tt.expected {
			t.Errorf("ParseJersey(%q) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"2", 2},
		{"0", 0},
		{"10", 10},
		{"-", -1},
		{"", -1},
		{"abandoned", -1},
	}

	for _, tt := range tests {
		result := ParseScore(tt.input)
		if result != tt.expected {
			t.Errorf("ParseScore(%q) = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}
