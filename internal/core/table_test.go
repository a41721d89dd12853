package core

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func sampleTable() *TableData {
	return Construct(
		[]string{"date", "ledger", "amount"},
		[]map[string]string{
			{"date": "2024-01-15", "ledger": "Sales", "amount": "100"},
			{"date": "2024-01-16", "ledger": "Purchase", "amount": "250.50"},
			{"date": "", "ledger": "Cash", "amount": "abc"},
		},
	)
}

func TestConstruct(t *testing.T) {
	table := Construct(
		[]string{"id", "date", "amount", "date"},
		[]map[string]string{
			{"id": "raw-7", "date": "2024-01-15", "amount": "10"},
			{"date": "2024-01-16"},
		},
	)

	wantHeaders := []string{"date", "amount"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", table.Headers, wantHeaders)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}

	for i, want := range []string{"row-1", "row-2"} {
		if table.Rows[i].ID != want {
			t.Errorf("Rows[%d].ID = %q, want %q", i, table.Rows[i].ID, want)
		}
	}

	cell := table.Rows[0].Cell("amount")
	if cell.Value != "10" {
		t.Errorf("amount = %q, want %q", cell.Value, "10")
	}
	if cell.Metadata.Status != StatusOriginal {
		t.Errorf("Status = %q, want %q", cell.Metadata.Status, StatusOriginal)
	}
	if cell.Metadata.Confidence == nil || *cell.Metadata.Confidence != DefaultConfidence {
		t.Errorf("Confidence = %v, want %v", cell.Metadata.Confidence, DefaultConfidence)
	}
	if cell.Metadata.OriginalValue != nil {
		t.Errorf("OriginalValue = %q, want nil", *cell.Metadata.OriginalValue)
	}

	if got := table.Rows[1].Value("amount"); got != "" {
		t.Errorf("missing raw value = %q, want empty", got)
	}
	if _, ok := table.Rows[0].Cells[IDColumn]; ok {
		t.Error("id should not be stored as a data cell")
	}
}

func TestConstructWithConfidence(t *testing.T) {
	table := ConstructWithConfidence(
		[]string{"ledger"},
		[]map[string]string{{"ledger": "Sales"}, {"ledger": "Cash"}},
		[]map[string]float64{{"ledger": 0.42}},
	)

	if got := *table.Rows[0].Cell("ledger").Metadata.Confidence; got != 0.42 {
		t.Errorf("row-1 confidence = %v, want 0.42", got)
	}
	if got := *table.Rows[1].Cell("ledger").Metadata.Confidence; got != DefaultConfidence {
		t.Errorf("row-2 confidence = %v, want %v", got, DefaultConfidence)
	}
}

func TestSetCell(t *testing.T) {
	table := sampleTable()

	next, old, err := SetCell(table, "row-1", "amount", "150")
	if err != nil {
		t.Fatalf("SetCell() error = %v", err)
	}
	if old != "100" {
		t.Errorf("old value = %q, want %q", old, "100")
	}

	cell := next.Rows[0].Cell("amount")
	if cell.Value != "150" {
		t.Errorf("Value = %q, want %q", cell.Value, "150")
	}
	if cell.Metadata.Status != StatusCorrected {
		t.Errorf("Status = %q, want %q", cell.Metadata.Status, StatusCorrected)
	}
	if cell.Metadata.OriginalValue == nil || *cell.Metadata.OriginalValue != "100" {
		t.Errorf("OriginalValue = %v, want 100", cell.Metadata.OriginalValue)
	}

	// the input table is untouched
	if got := table.Rows[0].Value("amount"); got != "100" {
		t.Errorf("input table amount = %q, want %q", got, "100")
	}
	if table.Rows[0].Cell("amount").Metadata.OriginalValue != nil {
		t.Error("input table gained an originalValue")
	}
}

func TestSetCell_OriginalValueCapturedOnce(t *testing.T) {
	table := sampleTable()

	for _, v := range []string{"1", "2", "3"} {
		var err error
		table, _, err = SetCell(table, "row-2", "ledger", v)
		if err != nil {
			t.Fatalf("SetCell(%q) error = %v", v, err)
		}
	}

	cell := table.Rows[1].Cell("ledger")
	if cell.Value != "3" {
		t.Errorf("Value = %q, want %q", cell.Value, "3")
	}
	if *cell.Metadata.OriginalValue != "Purchase" {
		t.Errorf("OriginalValue = %q, want %q", *cell.Metadata.OriginalValue, "Purchase")
	}
}

func TestSetCell_Errors(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name    string
		rowID   string
		column  string
		wantErr error
	}{
		{"id column", "row-1", IDColumn, ErrIDNotEditable},
		{"unknown row", "row-99", "amount", ErrRowNotFound},
		{"unknown column", "row-1", "narration", ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SetCell(table, tt.rowID, tt.column, "x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetCell() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetCellStatus(t *testing.T) {
	table := sampleTable()

	next, err := SetCellStatus(table, "row-3", "amount", StatusNeedsReview)
	if err != nil {
		t.Fatalf("SetCellStatus() error = %v", err)
	}

	cell := next.Rows[2].Cell("amount")
	if cell.Metadata.Status != StatusNeedsReview {
		t.Errorf("Status = %q, want %q", cell.Metadata.Status, StatusNeedsReview)
	}
	if cell.Value != "abc" {
		t.Errorf("Value = %q, want unchanged %q", cell.Value, "abc")
	}
	if cell.Metadata.OriginalValue != nil {
		t.Error("status change should not capture originalValue")
	}

	if _, err := SetCellStatus(table, "row-3", "amount", "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetCellStatus(bogus) error = %v, want %v", err, ErrInvalidStatus)
	}
	if _, err := SetCellStatus(table, "row-3", IDColumn, StatusIgnored); !errors.Is(err, ErrIDNotEditable) {
		t.Errorf("SetCellStatus(id) error = %v, want %v", err, ErrIDNotEditable)
	}
}

func TestParseCellStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    CellStatus
		wantErr bool
	}{
		{"original", StatusOriginal, false},
		{"needs-review", StatusNeedsReview, false},
		{"ignored", StatusIgnored, false},
		{"", "", true},
		{"approved", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCellStatus(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCellStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCellStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	table := sampleTable()
	clone := table.Clone()

	if !reflect.DeepEqual(table, clone) {
		t.Fatal("Clone() not equal to source")
	}

	*clone.Rows[0].Cells["amount"].Metadata.Confidence = 0.1
	clone.Headers[0] = "changed"

	if *table.Rows[0].Cell("amount").Metadata.Confidence != DefaultConfidence {
		t.Error("mutating clone confidence changed source")
	}
	if table.Headers[0] != "date" {
		t.Error("mutating clone headers changed source")
	}
}

func TestTableRowJSON(t *testing.T) {
	table := sampleTable()
	table, _, _ = SetCell(table, "row-1", "amount", "150")

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw struct {
		Rows []map[string]json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := raw.Rows[0][IDColumn]; !ok {
		t.Error("serialized row should carry an id key")
	}

	var back TableData
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(table, &back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, table)
	}
}

func TestTableCellJSON_NormalizesValues(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `{"value":"Sales"}`, "Sales", false},
		{"number", `{"value":1250.5}`, "1250.5", false},
		{"bool", `{"value":true}`, "true", false},
		{"null", `{"value":null}`, "", false},
		{"object", `{"value":{"a":1}}`, "", true},
		{"bad status", `{"value":"x","metadata":{"status":"approved"}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c TableCell
			err := json.Unmarshal([]byte(tt.input), &c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && c.Value != tt.want {
				t.Errorf("Value = %q, want %q", c.Value, tt.want)
			}
		})
	}
}
