package core

import (
	"reflect"
	"testing"
)

func ptr[T any](v T) *T {
	return &v
}

func singleColumn(column string, values ...string) *TableData {
	rows := make([]map[string]string, len(values))
	for i, v := range values {
		rows[i] = map[string]string{column: v}
	}
	return Construct([]string{column}, rows)
}

func TestValidate_EndToEnd(t *testing.T) {
	table := Construct(
		[]string{"date", "amount"},
		[]map[string]string{{"date": "", "amount": "abc"}},
	)
	rules := Rules{
		"date":   {Required: true},
		"amount": {Type: TypeNumber},
	}

	got := Validate(table, rules)
	want := []ValidationError{
		{RowID: "row-1", ColumnKey: "date", Type: ViolationMissing, Message: "date is required"},
		{RowID: "row-1", ColumnKey: "amount", Type: ViolationFormat, Message: "amount must be a number"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %+v, want %+v", got, want)
	}
}

func TestValidate_UniqueFlagsLaterOccurrences(t *testing.T) {
	table := singleColumn("voucher_no", "X", "Y", "X", "Z", "X")
	rules := Rules{"voucher_no": {Unique: true}}

	got := Validate(table, rules)
	if len(got) != 2 {
		t.Fatalf("len(Validate()) = %d, want 2: %+v", len(got), got)
	}
	for i, wantRow := range []string{"row-3", "row-5"} {
		if got[i].RowID != wantRow {
			t.Errorf("violation %d RowID = %q, want %q", i, got[i].RowID, wantRow)
		}
		if got[i].Type != ViolationDuplicate {
			t.Errorf("violation %d Type = %q, want %q", i, got[i].Type, ViolationDuplicate)
		}
		if got[i].Message != "Duplicate value in voucher_no" {
			t.Errorf("violation %d Message = %q", i, got[i].Message)
		}
	}
}

func TestValidate_Range(t *testing.T) {
	table := singleColumn("amount", "150")
	rules := Rules{"amount": {Type: TypeNumber, MinValue: ptr(0.0), MaxValue: ptr(100.0)}}

	got := Validate(table, rules)
	if len(got) != 1 {
		t.Fatalf("len(Validate()) = %d, want 1: %+v", len(got), got)
	}
	if got[0].Type != ViolationRange {
		t.Errorf("Type = %q, want %q", got[0].Type, ViolationRange)
	}
	if got[0].Message != "amount must be at most 100" {
		t.Errorf("Message = %q, want %q", got[0].Message, "amount must be at most 100")
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		rule      ValidationRule
		wantTypes []ViolationType
	}{
		{
			name:      "below minimum",
			values:    []string{"-5"},
			rule:      ValidationRule{Type: TypeNumber, MinValue: ptr(0.0)},
			wantTypes: []ViolationType{ViolationRange},
		},
		{
			name:      "currency and separators parse",
			values:    []string{"$1,234.50", "(12.00)", "₹ 99"},
			rule:      ValidationRule{Type: TypeNumber},
			wantTypes: nil,
		},
		{
			name:      "bad date",
			values:    []string{"2024-13-45", "15-Jan-2024"},
			rule:      ValidationRule{Type: TypeDate},
			wantTypes: []ViolationType{ViolationFormat},
		},
		{
			name:      "empty skips type checks",
			values:    []string{"", "  "},
			rule:      ValidationRule{Type: TypeNumber, MinValue: ptr(1.0)},
			wantTypes: nil,
		},
		{
			name:      "whitespace counts as missing",
			values:    []string{"   "},
			rule:      ValidationRule{Required: true},
			wantTypes: []ViolationType{ViolationMissing},
		},
		{
			name:      "blank values are not duplicates",
			values:    []string{"", "", "A"},
			rule:      ValidationRule{Unique: true},
			wantTypes: nil,
		},
		{
			name:      "trimmed values are duplicates",
			values:    []string{"A", " A "},
			rule:      ValidationRule{Unique: true},
			wantTypes: []ViolationType{ViolationDuplicate},
		},
		{
			name:      "format then duplicate on one cell",
			values:    []string{"n/a", "n/a"},
			rule:      ValidationRule{Type: TypeNumber, Unique: true},
			wantTypes: []ViolationType{ViolationFormat, ViolationFormat, ViolationDuplicate},
		},
		{
			name:      "disabled rule is skipped",
			values:    []string{""},
			rule:      ValidationRule{Required: true, Enabled: ptr(false)},
			wantTypes: nil,
		},
		{
			name:      "explicitly enabled rule runs",
			values:    []string{""},
			rule:      ValidationRule{Required: true, Enabled: ptr(true)},
			wantTypes: []ViolationType{ViolationMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := singleColumn("col", tt.values...)
			got := Validate(table, Rules{"col": tt.rule})

			var gotTypes []ViolationType
			for _, v := range got {
				gotTypes = append(gotTypes, v.Type)
			}
			if !reflect.DeepEqual(gotTypes, tt.wantTypes) {
				t.Errorf("violation types = %v, want %v", gotTypes, tt.wantTypes)
			}
		})
	}
}

func TestValidate_IgnoresIDAndUnknownColumns(t *testing.T) {
	table := singleColumn("ledger", "Sales")
	rules := Rules{
		IDColumn:    {Required: true, Type: TypeNumber},
		"narration": {Required: true},
	}

	if got := Validate(table, rules); len(got) != 0 {
		t.Errorf("Validate() = %+v, want none", got)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	table := benchTable(200)
	rules := benchRules()

	first := Validate(table, rules)
	for i := 0; i < 5; i++ {
		if got := Validate(table, rules); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i+2)
		}
	}
}

func TestValidate_OrderIsRowMajor(t *testing.T) {
	table := Construct(
		[]string{"ledger", "amount"},
		[]map[string]string{
			{"ledger": "", "amount": "x"},
			{"ledger": "", "amount": "y"},
		},
	)
	rules := Rules{
		"amount": {Type: TypeNumber},
		"ledger": {Required: true},
	}

	got := Validate(table, rules)
	want := []struct{ row, col string }{
		{"row-1", "ledger"}, {"row-1", "amount"},
		{"row-2", "ledger"}, {"row-2", "amount"},
	}
	if len(got) != len(want) {
		t.Fatalf("len(Validate()) = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].RowID != w.row || got[i].ColumnKey != w.col {
			t.Errorf("violation %d = %s/%s, want %s/%s", i, got[i].RowID, got[i].ColumnKey, w.row, w.col)
		}
	}
}

func TestValidate_EmptyInputs(t *testing.T) {
	if got := Validate(nil, Rules{"a": {Required: true}}); got == nil || len(got) != 0 {
		t.Errorf("Validate(nil) = %v, want empty non-nil", got)
	}
	if got := Validate(sampleTable(), nil); got == nil || len(got) != 0 {
		t.Errorf("Validate(no rules) = %v, want empty non-nil", got)
	}
}

func TestRulesCheck(t *testing.T) {
	tests := []struct {
		name    string
		rules   Rules
		wantErr bool
	}{
		{"valid", Rules{"amount": {Type: TypeNumber, MinValue: ptr(0.0), MaxValue: ptr(10.0)}}, false},
		{"unknown type", Rules{"amount": {Type: "currency"}}, true},
		{"inverted bounds", Rules{"amount": {MinValue: ptr(10.0), MaxValue: ptr(1.0)}}, true},
		{"bounds on text", Rules{"ledger": {Type: TypeText, MaxValue: ptr(10.0)}}, true},
		{"bounds without type", Rules{"amount": {MinValue: ptr(0.0)}}, true},
		{"id column", Rules{IDColumn: {Required: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRulesClone(t *testing.T) {
	rules := Rules{"amount": {MinValue: ptr(1.0)}}
	clone := rules.Clone()
	*clone["amount"].MinValue = 5

	if *rules["amount"].MinValue != 1 {
		t.Error("mutating clone changed source")
	}
}

func TestViolationsByCell(t *testing.T) {
	table := singleColumn("amount", "x", "x")
	got := ViolationsByCell(Validate(table, Rules{"amount": {Type: TypeNumber, Unique: true}}))

	if len(got["row-1/amount"]) != 1 {
		t.Errorf("row-1/amount violations = %d, want 1", len(got["row-1/amount"]))
	}
	if len(got["row-2/amount"]) != 2 {
		t.Errorf("row-2/amount violations = %d, want 2", len(got["row-2/amount"]))
	}
}
