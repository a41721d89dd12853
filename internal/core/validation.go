package core

// validation.go evaluates per-column rules against a table.
//
// Validation is a pure function of (table, rules). It runs after every edit and
// every rule change, so it stays O(rows x columns) with a single extra pass per
// unique column for duplicate detection.
//
// Output order is row-major, then header order, then a fixed order per cell:
// missing, format, range, duplicate. Calling Validate twice on the same
// inputs yields identical output.

import (
	"fmt"
	"strings"
)

// ColumnType is the expected data type of a column.
type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeText   ColumnType = "text"
)

// Valid reports whether t is empty (untyped) or a known type.
func (t ColumnType) Valid() bool {
	switch t {
	case "", TypeNumber, TypeDate, TypeText:
		return true
	}
	return false
}

// ViolationType classifies a validation failure.
type ViolationType string

const (
	ViolationFormat    ViolationType = "format"
	ViolationRange     ViolationType = "range"
	ViolationMissing   ViolationType = "missing"
	ViolationDuplicate ViolationType = "duplicate"
)

// ValidationRule describes the checks applied to one column.
// MinValue and MaxValue are only accepted when Type is number.
// A nil Enabled means the rule is active.
type ValidationRule struct {
	Type     ColumnType `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool       `json:"required,omitempty" yaml:"required,omitempty"`
	MinValue *float64   `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue *float64   `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Unique   bool       `json:"unique,omitempty" yaml:"unique,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the rule should be evaluated.
func (r ValidationRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// check reports problems with the rule definition itself.
func (r ValidationRule) check() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown rule type %q", r.Type)
	}
	if r.MinValue != nil && r.MaxValue != nil && *r.MinValue > *r.MaxValue {
		return fmt.Errorf("minValue %s is greater than maxValue %s",
			FormatNumber(*r.MinValue), FormatNumber(*r.MaxValue))
	}
	if (r.MinValue != nil || r.MaxValue != nil) && r.Type != TypeNumber {
		return fmt.Errorf("minValue and maxValue require type %q", TypeNumber)
	}
	return nil
}

// Rules maps column keys to their validation rule.
type Rules map[string]ValidationRule

// Clone returns a deep copy of the rules.
func (r Rules) Clone() Rules {
	if r == nil {
		return nil
	}
	out := make(Rules, len(r))
	for k, v := range r {
		if v.MinValue != nil {
			f := *v.MinValue
			v.MinValue = &f
		}
		if v.MaxValue != nil {
			f := *v.MaxValue
			v.MaxValue = &f
		}
		if v.Enabled != nil {
			b := *v.Enabled
			v.Enabled = &b
		}
		out[k] = v
	}
	return out
}

// Check validates every rule definition, naming the first bad column.
func (r Rules) Check() error {
	for col, rule := range r {
		if col == IDColumn {
			return fmt.Errorf("column %q cannot carry rules", IDColumn)
		}
		if err := rule.check(); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
	}
	return nil
}

// ValidationError is a single rule violation for one cell.
type ValidationError struct {
	RowID     string        `json:"rowId"`
	ColumnKey string        `json:"columnKey"`
	Type      ViolationType `json:"type"`
	Message   string        `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.RowID, e.ColumnKey, e.Message)
}

// Validate returns every violation of rules in t, in deterministic order.
// The id column and disabled rules are skipped.
func Validate(t *TableData, rules Rules) []ValidationError {
	violations := make([]ValidationError, 0)
	if t == nil || len(rules) == 0 {
		return violations
	}

	type activeRule struct {
		column string
		rule   ValidationRule
		dups   []bool
	}

	var active []activeRule
	for _, col := range t.Columns() {
		rule, ok := rules[col]
		if !ok || !rule.IsEnabled() {
			continue
		}
		ar := activeRule{column: col, rule: rule}
		if rule.Unique {
			ar.dups = duplicateRows(t, col)
		}
		active = append(active, ar)
	}

	for i, row := range t.Rows {
		for _, ar := range active {
			violations = appendCellViolations(violations, row, ar.column, ar.rule)
			if ar.dups != nil && ar.dups[i] {
				violations = append(violations, ValidationError{
					RowID:     row.ID,
					ColumnKey: ar.column,
					Type:      ViolationDuplicate,
					Message:   fmt.Sprintf("Duplicate value in %s", ar.column),
				})
			}
		}
	}

	return violations
}

// IsValid reports whether t has no violations under rules.
func IsValid(t *TableData, rules Rules) bool {
	return len(Validate(t, rules)) == 0
}

// CellKey is the ViolationsByCell key for one cell.
func CellKey(rowID, column string) string {
	return rowID + "/" + column
}

// ViolationsByCell groups violations by CellKey for rendering.
func ViolationsByCell(violations []ValidationError) map[string][]ValidationError {
	out := make(map[string][]ValidationError)
	for _, v := range violations {
		key := CellKey(v.RowID, v.ColumnKey)
		out[key] = append(out[key], v)
	}
	return out
}

// duplicateRows marks every row whose value in column appeared in an
// earlier row. The first occurrence is never marked. Blank values are
// ignored.
func duplicateRows(t *TableData, column string) []bool {
	dups := make([]bool, len(t.Rows))
	seen := make(map[string]struct{}, len(t.Rows))

	for i, row := range t.Rows {
		v := strings.TrimSpace(row.Value(column))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			dups[i] = true
			continue
		}
		seen[v] = struct{}{}
	}
	return dups
}

// appendCellViolations applies the non-duplicate checks to a single cell.
func appendCellViolations(out []ValidationError, row TableRow, column string, rule ValidationRule) []ValidationError {
	value := strings.TrimSpace(row.Value(column))

	newErr := func(vt ViolationType, msg string) ValidationError {
		return ValidationError{RowID: row.ID, ColumnKey: column, Type: vt, Message: msg}
	}

	if value == "" {
		if rule.Required {
			out = append(out, newErr(ViolationMissing, fmt.Sprintf("%s is required", column)))
		}
		// Empty values skip type checks
		return out
	}

	switch rule.Type {
	case TypeNumber:
		n, ok := ParseNumber(value)
		if !ok {
			return append(out, newErr(ViolationFormat, fmt.Sprintf("%s must be a number", column)))
		}
		if rule.MinValue != nil && n < *rule.MinValue {
			out = append(out, newErr(ViolationRange,
				fmt.Sprintf("%s must be at least %s", column, FormatNumber(*rule.MinValue))))
		}
		if rule.MaxValue != nil && n > *rule.MaxValue {
			out = append(out, newErr(ViolationRange,
				fmt.Sprintf("%s must be at most %s", column, FormatNumber(*rule.MaxValue))))
		}
	case TypeDate:
		if _, ok := ParseDate(value); !ok {
			out = append(out, newErr(ViolationFormat, fmt.Sprintf("%s must be a valid date", column)))
		}
	}

	return out
}
