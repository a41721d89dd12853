package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TwoDigitYearPivot bounds how far into the future a two digit year may
// land before it is moved back a century.
var TwoDigitYearPivot = 20

var (
	numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

	// Longer symbols first so "Rs." wins over "Rs".
	numberNoise = strings.NewReplacer(
		"Rs.", "", "Rs", "", "INR", "",
		"$", "", "€", "", "£", "", "₹", "",
		",", "",
	)
)

type dateLayout struct {
	layout    string
	shortYear bool
}

// dateLayouts lists the formats seen on scanned vouchers and bank
// statements. Four digit years are tried before two digit ones.
var dateLayouts = []dateLayout{
	{layout: "2006-01-02"},
	{layout: "2006/01/02"},
	{layout: "2006.01.02"},
	{layout: "1/2/2006"},
	{layout: "01/02/2006"},
	{layout: "1-2-2006"},
	{layout: "01-02-2006"},
	{layout: "1.2.2006"},
	{layout: "01.02.2006"},
	{layout: "2-Jan-2006"},
	{layout: "02-Jan-2006"},
	{layout: "Jan 2, 2006"},
	{layout: "2 Jan 2006"},
	{layout: "January 2, 2006"},
	{layout: "2 January 2006"},
	{layout: "20060102"},
	{layout: "1/2/06", shortYear: true},
	{layout: "01/02/06", shortYear: true},
	{layout: "1-2-06", shortYear: true},
	{layout: "1.2.06", shortYear: true},
	{layout: "01.02.06", shortYear: true},
	{layout: "2-Jan-06", shortYear: true},
}

// ParseNumber reads an OCR'd amount. Currency markers and thousands
// separators are ignored and "(12.50)" reads as -12.5.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	negative := len(s) > 1 && s[0] == '(' && s[len(s)-1] == ')'
	if negative {
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSpace(numberNoise.Replace(s))
	if s == "" {
		return 0, false
	}
	if negative {
		s = "-" + s
	}
	if !numberPattern.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ParseDate reads a cell as a calendar date in any of the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	latest := time.Now().Year() + TwoDigitYearPivot
	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, s)
		if err != nil {
			continue
		}
		if dl.shortYear && t.Year() > latest {
			t = t.AddDate(-100, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

// FormatNumber renders a bound or value without trailing zeros: 100, 2.5, -0.75.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CleanCell strips spreadsheet residue such as ="00123" and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`):
		s = s[2 : len(s)-1]
	case strings.HasPrefix(s, "="):
		s = s[1:]
	}
	return strings.TrimSpace(strings.Trim(s, `"'`))
}
