package core

// report.go serializes rules and full validation reports as JSON.
//
// Both imports are all-or-nothing: the document is fully decoded and checked
// before anything is returned, and callers only swap state in on success.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

const (
	// RulesFilename is the download name for an exported rule set.
	RulesFilename = "validation_rules.json"

	// ReportFilename is the download name for an exported report.
	ReportFilename = "validation_report.json"
)

// reportKeys are the exact top-level keys of a report document.
var reportKeys = []string{"data", "errors", "history", "rules"}

// ImportError is returned when a rules or report document cannot be imported.
type ImportError struct {
	Op  string // "rules" or "report"
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Op, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsImportError reports whether err is an *ImportError.
func IsImportError(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie)
}

// Report is the self-contained session document.
type Report struct {
	Data    *TableData         `json:"data"`
	Errors  []ValidationError  `json:"errors"`
	Rules   Rules              `json:"rules"`
	History []EditHistoryEntry `json:"history"`
}

// SavePayload is the body of a save request and the record written on save.
type SavePayload struct {
	FileID       string             `json:"fileId"`
	OriginalData *TableData         `json:"originalData"`
	ModifiedData *TableData         `json:"modifiedData"`
	EditHistory  []EditHistoryEntry `json:"editHistory"`
}

// Check reports structural problems with a payload.
func (p SavePayload) Check() error {
	if strings.TrimSpace(p.FileID) == "" {
		return errors.New("fileId is required")
	}
	if p.ModifiedData == nil {
		return errors.New("modifiedData is required")
	}
	return checkTable(p.ModifiedData)
}

// ExportRules serializes a rule mapping.
func ExportRules(rules Rules) ([]byte, error) {
	if rules == nil {
		rules = Rules{}
	}
	return json.MarshalIndent(rules, "", "  ")
}

// ImportRules parses a rules document. Unknown fields, unknown types and
// inverted bounds are rejected.
func ImportRules(data []byte) (Rules, error) {
	rules, err := decodeRules(data)
	if err != nil {
		return nil, &ImportError{Op: "rules", Err: err}
	}
	return rules, nil
}

// ExportReport serializes the table, violations, rules and history as one
// document with exactly the keys data, errors, rules and history.
func ExportReport(t *TableData, violations []ValidationError, rules Rules, history []EditHistoryEntry) ([]byte, error) {
	if t == nil {
		return nil, errors.New("export report: table is nil")
	}
	r := Report{
		Data:    t,
		Errors:  violations,
		Rules:   rules,
		History: history,
	}
	if r.Errors == nil {
		r.Errors = []ValidationError{}
	}
	if r.Rules == nil {
		r.Rules = Rules{}
	}
	if r.History == nil {
		r.History = []EditHistoryEntry{}
	}
	return json.MarshalIndent(r, "", "  ")
}

// ImportReport parses a report document.
func ImportReport(data []byte) (*Report, error) {
	r, err := decodeReport(data)
	if err != nil {
		return nil, &ImportError{Op: "report", Err: err}
	}
	return r, nil
}

func decodeRules(data []byte) (Rules, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("document is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rules Rules
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if dec.More() {
		return nil, errors.New("unexpected data after document")
	}
	if rules == nil {
		return nil, errors.New("document must be an object")
	}
	if err := rules.Check(); err != nil {
		return nil, err
	}
	return rules, nil
}

func decodeReport(data []byte) (*Report, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if raw == nil {
		return nil, errors.New("document must be an object")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if !slices.Equal(keys, reportKeys) {
		return nil, fmt.Errorf("document keys %v, want exactly %v", keys, reportKeys)
	}

	var r Report
	if err := json.Unmarshal(raw["data"], &r.Data); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if r.Data == nil {
		return nil, errors.New("data is null")
	}
	if err := checkTable(r.Data); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	if err := strictUnmarshal(raw["errors"], &r.Errors); err != nil {
		return nil, fmt.Errorf("errors: %w", err)
	}
	if r.Errors == nil {
		r.Errors = []ValidationError{}
	}

	rules, err := decodeRules(raw["rules"])
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	r.Rules = rules

	if err := strictUnmarshal(raw["history"], &r.History); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if r.History == nil {
		r.History = []EditHistoryEntry{}
	}
	// Undo and redo replay history against data, so every entry must
	// address a cell that exists.
	for i, e := range r.History {
		if _, err := r.Data.locate(e.RowID, e.ColumnKey); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i+1, err)
		}
	}

	return &r, nil
}

// checkTable verifies headers are unique and row ids are present and unique.
func checkTable(t *TableData) error {
	cols := make(map[string]struct{}, len(t.Headers))
	for _, h := range t.Headers {
		if _, dup := cols[h]; dup {
			return fmt.Errorf("duplicate header %q", h)
		}
		cols[h] = struct{}{}
	}

	seen := make(map[string]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		if row.ID == "" {
			return fmt.Errorf("row %d has no id", i+1)
		}
		if _, dup := seen[row.ID]; dup {
			return fmt.Errorf("duplicate row id %q", row.ID)
		}
		seen[row.ID] = struct{}{}
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
