package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Date", "date"},
		{"Voucher No.", "voucher_no"},
		{"  Amount (INR) ", "amount_inr"},
		{`="Ledger"`, "ledger"},
		{"GST%", "gst"},
		{"---", ""},
		{"Café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := HeaderKey(tt.input); got != tt.want {
				t.Errorf("HeaderKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUniqueHeaders(t *testing.T) {
	got := UniqueHeaders([]string{"Amount", "", "amount", "ID", "Amount", "column 2"})
	want := []string{"amount", "column_2", "amount_2", "id_2", "amount_3", "column_2_2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueHeaders() = %v, want %v", got, want)
	}
}

func TestFromRecords(t *testing.T) {
	records := [][]string{
		{"", ""},
		{"Date", "Ledger", "Amount"},
		{"2024-01-15", " Sales ", "100"},
		{"", "", ""},
		{"Date", "Ledger", "Amount"},
		{"2024-01-16", "Purchase"},
		{"2024-01-17", "Rent", "900", "extra"},
	}

	ext, err := FromRecords(records)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}

	wantHeaders := []string{"date", "ledger", "amount", "column_4"}
	if !reflect.DeepEqual(ext.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", ext.Headers, wantHeaders)
	}
	if len(ext.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(ext.Rows))
	}
	if ext.Rows[0]["ledger"] != "Sales" {
		t.Errorf("Rows[0][ledger] = %q, want Sales", ext.Rows[0]["ledger"])
	}
	if v, ok := ext.Rows[1]["amount"]; !ok || v != "" {
		t.Errorf("short row amount = %q, %v, want empty", v, ok)
	}
	if ext.Rows[2]["column_4"] != "extra" {
		t.Errorf("wide row column_4 = %q, want extra", ext.Rows[2]["column_4"])
	}
}

func TestFromRecords_Empty(t *testing.T) {
	for _, records := range [][][]string{nil, {{"", " "}}} {
		if _, err := FromRecords(records); !errors.Is(err, core.ErrNoTables) {
			t.Errorf("FromRecords(%v) error = %v, want ErrNoTables", records, err)
		}
	}
}

func TestFromText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    int
		wantLedger  string
	}{
		{
			name: "layout columns",
			input: "Date          Ledger Name        Amount\n" +
				"2024-01-15    Sales Account      1,200.00\n" +
				"\f" +
				"Date          Ledger Name        Amount\n" +
				"2024-01-16    Cash               50\n",
			wantHeaders: []string{"date", "ledger_name", "amount"},
			wantRows:    2,
			wantLedger:  "Sales Account",
		},
		{
			name:        "single spaced ocr",
			input:       "Date Ledger Amount\n2024-01-15 Sales 100\n",
			wantHeaders: []string{"date", "ledger", "amount"},
			wantRows:    1,
			wantLedger:  "Sales",
		},
		{
			name:        "tab separated",
			input:       "Date\tLedger\tAmount\n2024-01-15\tSales\t100\n",
			wantHeaders: []string{"date", "ledger", "amount"},
			wantRows:    1,
			wantLedger:  "Sales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := FromText(tt.input)
			if err != nil {
				t.Fatalf("FromText() error = %v", err)
			}
			if !reflect.DeepEqual(ext.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %v, want %v", ext.Headers, tt.wantHeaders)
			}
			if len(ext.Rows) != tt.wantRows {
				t.Fatalf("len(Rows) = %d, want %d", len(ext.Rows), tt.wantRows)
			}
			ledger := ext.Rows[0][tt.wantHeaders[1]]
			if ledger != tt.wantLedger {
				t.Errorf("first ledger = %q, want %q", ledger, tt.wantLedger)
			}
		})
	}
}

func TestFromText_Blank(t *testing.T) {
	if _, err := FromText(" \n\f\n"); !errors.Is(err, core.ErrNoTables) {
		t.Errorf("FromText(blank) error = %v, want ErrNoTables", err)
	}
}
