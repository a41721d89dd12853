package core

import (
	"fmt"
	"testing"
)

// ============================================================================
// Conversion Function Benchmarks
// ============================================================================

// BenchmarkParseNumber benchmarks numeric string parsing.
// This runs for every non-empty cell of a number column on every edit.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",      // Accounting negative
		"1,234,567.89",  // Thousands separators
		"  999.99  ",    // Whitespace
		"\u20b91234.56", // Rupee
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

// BenchmarkParseNumber_Simple benchmarks the most common case: plain integers.
func BenchmarkParseNumber_Simple(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseNumber("12345")
	}
}

// BenchmarkParseDate benchmarks date string parsing.
func BenchmarkParseDate(b *testing.B) {
	testCases := []string{
		"2024-01-15",   // ISO format
		"01/15/2024",   // US format
		"Jan 15, 2024", // Text month
		"20240115",     // Compact
		"1/5/24",       // 2-digit year
		"15-Jan-2024",  // Tally style
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseDate(tc)
		}
	}
}

// BenchmarkParseDate_Invalid benchmarks the worst case: every layout is tried.
func BenchmarkParseDate_Invalid(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseDate("not a date")
	}
}

// ============================================================================
// Engine Benchmarks
// ============================================================================

// benchTable builds a tally-style table with n rows. Every tenth row has a
// bad amount and every twentieth repeats a voucher number.
func benchTable(n int) *TableData {
	headers := []string{"date", "voucher_no", "ledger", "amount"}
	rows := make([]map[string]string, n)
	for i := range rows {
		amount := fmt.Sprintf("%d.50", i*10)
		if i%10 == 0 {
			amount = "n/a"
		}
		voucher := fmt.Sprintf("V%05d", i)
		if i%20 == 0 && i > 0 {
			voucher = "V00000"
		}
		rows[i] = map[string]string{
			"date":       "2024-01-15",
			"voucher_no": voucher,
			"ledger":     "Sales",
			"amount":     amount,
		}
	}
	return Construct(headers, rows)
}

func benchRules() Rules {
	floor := 0.0
	return Rules{
		"date":       {Type: TypeDate, Required: true},
		"voucher_no": {Type: TypeText, Unique: true},
		"ledger":     {Type: TypeText, Required: true},
		"amount":     {Type: TypeNumber, Required: true, MinValue: &floor},
	}
}

// BenchmarkValidate benchmarks a full validation pass, which runs after
// every edit.
func BenchmarkValidate(b *testing.B) {
	sizes := []int{100, 500, 2000}
	rules := benchRules()

	for _, size := range sizes {
		table := benchTable(size)
		b.Run(fmt.Sprintf("rows_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Validate(table, rules)
			}
		})
	}
}

// BenchmarkSetCell benchmarks one copy-on-write cell edit.
func BenchmarkSetCell(b *testing.B) {
	table := benchTable(500)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := SetCell(table, "row-250", "amount", "42"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHistory_UndoRedo benchmarks an undo followed by a redo.
func BenchmarkHistory_UndoRedo(b *testing.B) {
	table := benchTable(500)
	h := NewHistory()
	next, old, err := SetCell(table, "row-1", "amount", "99")
	if err != nil {
		b.Fatal(err)
	}
	h.Commit("row-1", "amount", old, "99")
	table = next

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table, _, err = h.Undo(table)
		if err != nil {
			b.Fatal(err)
		}
		table, _, err = h.Redo(table)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDiff benchmarks diffing a 500 row table with a handful of edits.
func BenchmarkDiff(b *testing.B) {
	original := benchTable(500)
	current := original
	for i := 1; i <= 10; i++ {
		var err error
		current, _, err = SetCell(current, fmt.Sprintf("row-%d", i*40), "ledger", "Purchase")
		if err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(original, current, nil)
	}
}

// BenchmarkReportRoundTrip benchmarks export then import of a report.
func BenchmarkReportRoundTrip(b *testing.B) {
	table := benchTable(500)
	rules := benchRules()
	violations := Validate(table, rules)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, err := ExportReport(table, violations, rules, nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := ImportReport(data); err != nil {
			b.Fatal(err)
		}
	}
}
