package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestReportRoundTrip(t *testing.T) {
	h := NewHistory()
	table := edit(t, h, sampleTable(), "row-1", "amount", "150")
	table, err := SetCellStatus(table, "row-3", "amount", StatusNeedsReview)
	if err != nil {
		t.Fatalf("SetCellStatus() error = %v", err)
	}
	rules := Rules{
		"date":   {Type: TypeDate, Required: true},
		"amount": {Type: TypeNumber, MinValue: ptr(0.0), MaxValue: ptr(100.0), Enabled: ptr(true)},
		"ledger": {Unique: true, Enabled: ptr(false)},
	}
	violations := Validate(table, rules)
	history := h.Entries()

	data, err := ExportReport(table, violations, rules, history)
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}

	got, err := ImportReport(data)
	if err != nil {
		t.Fatalf("ImportReport() error = %v", err)
	}

	if !reflect.DeepEqual(got.Data, table) {
		t.Errorf("Data mismatch:\n got %+v\nwant %+v", got.Data, table)
	}
	if !reflect.DeepEqual(got.Errors, violations) {
		t.Errorf("Errors = %+v, want %+v", got.Errors, violations)
	}
	if !reflect.DeepEqual(got.Rules, rules) {
		t.Errorf("Rules = %+v, want %+v", got.Rules, rules)
	}
	if !reflect.DeepEqual(got.History, history) {
		t.Errorf("History = %+v, want %+v", got.History, history)
	}
}

func TestExportReport_Keys(t *testing.T) {
	data, err := ExportReport(sampleTable(), nil, nil, nil)
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"data", "errors", "rules", "history"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if len(raw) != 4 {
		t.Errorf("len(keys) = %d, want 4", len(raw))
	}
	if string(raw["errors"]) != "[]" || string(raw["history"]) != "[]" || string(raw["rules"]) != "{}" {
		t.Errorf("empty collections should serialize as [] and {}: %s", data)
	}

	if _, err := ExportReport(nil, nil, nil, nil); err == nil {
		t.Error("ExportReport(nil) expected error")
	}
}

func TestImportReport_Rejects(t *testing.T) {
	valid, err := ExportReport(sampleTable(), nil, Rules{}, nil)
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not json", "not json at all"},
		{"array", `[]`},
		{"missing key", `{"data":{"headers":[],"rows":[]},"errors":[],"rules":{}}`},
		{"extra key", strings.Replace(string(valid), `"history"`, `"extra": 1, "history"`, 1)},
		{"null data", `{"data":null,"errors":[],"rules":{},"history":[]}`},
		{"row without id", `{"data":{"headers":["a"],"rows":[{"a":{"value":"1"}}]},"errors":[],"rules":{},"history":[]}`},
		{"duplicate row id", `{"data":{"headers":["a"],"rows":[{"id":"r1"},{"id":"r1"}]},"errors":[],"rules":{},"history":[]}`},
		{"bad rule type", `{"data":{"headers":[],"rows":[]},"errors":[],"rules":{"a":{"type":"money"}},"history":[]}`},
		{"unknown history field", `{"data":{"headers":[],"rows":[]},"errors":[],"rules":{},"history":[{"who":"me"}]}`},
		{"duplicate header", `{"data":{"headers":["a","a"],"rows":[]},"errors":[],"rules":{},"history":[]}`},
		{"history unknown row", `{"data":{"headers":["a"],"rows":[{"id":"r1","a":{"value":"1"}}]},"errors":[],"rules":{},"history":[{"timestamp":1,"rowId":"r9","columnKey":"a","oldValue":"0","newValue":"1"}]}`},
		{"history unknown column", `{"data":{"headers":["a"],"rows":[{"id":"r1","a":{"value":"1"}}]},"errors":[],"rules":{},"history":[{"timestamp":1,"rowId":"r1","columnKey":"b","oldValue":"0","newValue":"1"}]}`},
		{"history on id column", `{"data":{"headers":["a"],"rows":[{"id":"r1","a":{"value":"1"}}]},"errors":[],"rules":{},"history":[{"timestamp":1,"rowId":"r1","columnKey":"id","oldValue":"r0","newValue":"r1"}]}`},
		{"bad status", `{"data":{"headers":["a"],"rows":[{"id":"r1","a":{"value":"1","metadata":{"status":"done"}}}]},"errors":[],"rules":{},"history":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImportReport([]byte(tt.input))
			if err == nil {
				t.Fatalf("ImportReport() = %+v, want error", got)
			}
			if !IsImportError(err) {
				t.Errorf("error %v is not an ImportError", err)
			}
		})
	}
}

func TestImportRules(t *testing.T) {
	input := `{
		"amount": {"type": "number", "minValue": 0, "maxValue": 100},
		"date": {"type": "date", "required": true},
		"voucher_no": {"unique": true, "enabled": false}
	}`

	rules, err := ImportRules([]byte(input))
	if err != nil {
		t.Fatalf("ImportRules() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("len(rules) = %d, want 3", len(rules))
	}
	if *rules["amount"].MaxValue != 100 {
		t.Errorf("amount.maxValue = %v, want 100", *rules["amount"].MaxValue)
	}
	if rules["voucher_no"].IsEnabled() {
		t.Error("voucher_no should be disabled")
	}

	out, err := ExportRules(rules)
	if err != nil {
		t.Fatalf("ExportRules() error = %v", err)
	}
	back, err := ImportRules(out)
	if err != nil {
		t.Fatalf("ImportRules(ExportRules()) error = %v", err)
	}
	if !reflect.DeepEqual(back, rules) {
		t.Errorf("rules round trip = %+v, want %+v", back, rules)
	}
}

func TestImportRules_MalformedLeavesRulesUnchanged(t *testing.T) {
	current := Rules{"amount": {Type: TypeNumber, MaxValue: ptr(100.0)}}
	before, err := ExportRules(current)
	if err != nil {
		t.Fatalf("ExportRules() error = %v", err)
	}

	inputs := []string{
		"{not json",
		"",
		"null",
		`{"amount": {"type": "money"}}`,
		`{"amount": {"minValue": 5, "maxValue": 1}}`,
		`{"amount": {"type": "date", "minValue": 0}}`,
		`{"amount": {"pattern": "x"}}`,
		`{"id": {"required": true}}`,
		`{"a": {}} {"b": {}}`,
	}

	for _, input := range inputs {
		imported, err := ImportRules([]byte(input))
		if err == nil {
			t.Errorf("ImportRules(%q) = %+v, want error", input, imported)
			continue
		}
		if !IsImportError(err) {
			t.Errorf("ImportRules(%q) error %v is not an ImportError", input, err)
		}
		if imported != nil {
			current = imported
		}
	}

	after, err := ExportRules(current)
	if err != nil {
		t.Fatalf("ExportRules() error = %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("rules changed after failed imports:\n got %s\nwant %s", after, before)
	}
}

func TestSavePayloadCheck(t *testing.T) {
	tests := []struct {
		name    string
		payload SavePayload
		wantErr bool
	}{
		{"valid", SavePayload{FileID: "abc", ModifiedData: sampleTable()}, false},
		{"missing file id", SavePayload{ModifiedData: sampleTable()}, true},
		{"missing modified data", SavePayload{FileID: "abc"}, true},
		{"duplicate row ids", SavePayload{FileID: "abc", ModifiedData: &TableData{
			Rows: []TableRow{{ID: "r"}, {ID: "r"}},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSavePayloadJSON(t *testing.T) {
	payload := SavePayload{
		FileID:       "abc",
		OriginalData: sampleTable(),
		ModifiedData: sampleTable(),
		EditHistory:  []EditHistoryEntry{},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, key := range []string{`"fileId"`, `"originalData"`, `"modifiedData"`, `"editHistory"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("payload JSON missing %s", key)
		}
	}
}
