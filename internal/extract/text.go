package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"golang.org/x/text/unicode/norm"
)

var columnGap = regexp.MustCompile(`\t+|\s{2,}`)

// CleanValue trims spreadsheet artifacts and normalizes to NFC.
func CleanValue(s string) string {
	return norm.NFC.String(core.CleanCell(s))
}

// HeaderKey converts header text to a lowercase snake_case key:
// "Voucher No." becomes "voucher_no".
func HeaderKey(s string) string {
	s = strings.ToLower(CleanValue(s))

	var b strings.Builder
	gap := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	return b.String()
}

// UniqueHeaders converts raw header cells to keys. Blank headers become
// column_N (1-based position). Repeats, and a source column named id,
// get a numeric suffix: amount, amount_2.
func UniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		base := HeaderKey(h)
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		key := base
		for n := 2; used[key] || key == core.IDColumn; n++ {
			key = base + "_" + strconv.Itoa(n)
		}
		used[key] = true
		out[i] = key
	}
	return out
}

// FromRecords builds an extraction from raw records. The first non-empty
// record is the header. Blank records and repeats of the header row (as
// left behind by page breaks) are skipped.
func FromRecords(records [][]string) (*core.Extraction, error) {
	width := 0
	var cleaned [][]string
	for _, rec := range records {
		row := make([]string, len(rec))
		blank := true
		for i, v := range rec {
			row[i] = CleanValue(v)
			if row[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		cleaned = append(cleaned, row)
		width = max(width, len(row))
	}
	if len(cleaned) == 0 {
		return nil, core.ErrNoTables
	}

	rawHeader := pad(cleaned[0], width)
	headers := UniqueHeaders(rawHeader)
	headerLine := strings.Join(rawHeader, "\x00")

	ext := &core.Extraction{Headers: headers, Rows: []map[string]string{}}
	for _, rec := range cleaned[1:] {
		rec = pad(rec, width)
		if strings.Join(rec, "\x00") == headerLine {
			continue
		}
		row := make(map[string]string, width)
		for i, h := range headers {
			row[h] = rec[i]
		}
		ext.Rows = append(ext.Rows, row)
	}
	return ext, nil
}

// FromText splits plain text output (pdftotext, tesseract) into records.
// Columns are separated by tabs or runs of two or more spaces. When the
// header line has no such gaps, single whitespace is used instead.
func FromText(text string) (*core.Extraction, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\f", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, core.ErrNoTables
	}

	split := func(line string) []string { return columnGap.Split(line, -1) }
	if len(split(lines[0])) < 2 {
		split = strings.Fields
	}

	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = split(line)
	}
	return FromRecords(records)
}

func pad(rec []string, width int) []string {
	if len(rec) >= width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
