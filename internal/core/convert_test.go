package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		// Valid: Basic integers
		{name: "positive integer", input: "123", wantValid: true, wantValue: 123},
		{name: "zero", input: "0", wantValid: true, wantValue: 0},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: -456},

		// Valid: Decimals
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: 0.99},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: 99},

		// Valid: Currency symbols
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: 1234.56},
		{name: "euro sign", input: "€1234.56", wantValid: true, wantValue: 1234.56},
		{name: "pound sign", input: "£1234.56", wantValid: true, wantValue: 1234.56},
		{name: "rupee sign", input: "₹1,500", wantValid: true, wantValue: 1500},
		{name: "rupee abbreviation", input: "Rs. 250", wantValid: true, wantValue: 250},

		// Valid: Formatting
		{name: "thousands separators", input: "1,234,567.89", wantValid: true, wantValue: 1234567.89},
		{name: "accounting negative", input: "(123.45)", wantValid: true, wantValue: -123.45},
		{name: "accounting negative with currency", input: "($50)", wantValid: true, wantValue: -50},
		{name: "surrounding whitespace", input: "  999.99  ", wantValid: true, wantValue: 999.99},
		{name: "scientific notation", input: "1.5e3", wantValid: true, wantValue: 1500},

		// Invalid
		{name: "empty string", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "mixed", input: "12abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "lone sign", input: "-", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseNumber(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.wantValue {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantDate  string // YYYY-MM-DD
	}{
		{name: "ISO", input: "2024-01-15", wantValid: true, wantDate: "2024-01-15"},
		{name: "ISO slashes", input: "2024/01/15", wantValid: true, wantDate: "2024-01-15"},
		{name: "US slashes", input: "1/15/2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "US padded", input: "01/15/2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "dotted", input: "01.15.2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "day month abbrev", input: "15-Jan-2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "month name", input: "Jan 15, 2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "long month name", input: "January 15, 2024", wantValid: true, wantDate: "2024-01-15"},
		{name: "compact", input: "20240115", wantValid: true, wantDate: "2024-01-15"},
		{name: "two digit year", input: "1/15/24", wantValid: true, wantDate: "2024-01-15"},
		{name: "surrounding whitespace", input: "  2024-01-15  ", wantValid: true, wantDate: "2024-01-15"},

		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "not a date", wantValid: false},
		{name: "impossible month", input: "2024-13-01", wantValid: false},
		{name: "impossible day", input: "2024-02-30", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseDate(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got.Format("2006-01-02") != tt.wantDate {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.wantDate)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	currentYear := time.Now().Year()
	farFuture := (currentYear + TwoDigitYearPivot + 5) % 100

	input := "1/1/" + twoDigits(farFuture)
	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.Year() > currentYear+TwoDigitYearPivot {
		t.Errorf("ParseDate(%q) year = %d, want <= %d", input, got.Year(), currentYear+TwoDigitYearPivot)
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// ----------------------------------------------------------------------------
// FormatNumber Tests
// ----------------------------------------------------------------------------

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{100, "100"},
		{0, "0"},
		{2.5, "2.5"},
		{-0.75, "-0.75"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.input); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "hello", want: "hello"},
		{name: "whitespace", input: "  hello  ", want: "hello"},
		{name: "excel formula text", input: `="00123"`, want: "00123"},
		{name: "excel formula bare", input: "=SUM", want: "SUM"},
		{name: "double quotes", input: `"quoted"`, want: "quoted"},
		{name: "single quotes", input: `'quoted'`, want: "quoted"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
