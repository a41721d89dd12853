package core

// diff.go compares the frozen original extraction against the live table.
//
// The comparison is read-only. Rows are matched by id. Rows present on one
// side only are reported as added or removed rather than treated as errors,
// so a re-extraction with a different row count still produces a report.

import "slices"

// RowChange classifies a row in a diff.
type RowChange string

const (
	RowModified RowChange = "modified"
	RowAdded    RowChange = "added"
	RowRemoved  RowChange = "removed"
)

// CellDiff describes one cell whose value or status differs.
type CellDiff struct {
	ColumnKey     string     `json:"columnKey"`
	Original      string     `json:"original"`
	Current       string     `json:"current"`
	OriginalState CellStatus `json:"originalStatus"`
	CurrentState  CellStatus `json:"currentStatus"`
	ValueChanged  bool       `json:"valueChanged"`
	Edits         int        `json:"edits"`
}

// RowDiff groups the differences for one row.
type RowDiff struct {
	RowID  string     `json:"rowId"`
	Change RowChange  `json:"change"`
	Cells  []CellDiff `json:"cells,omitempty"`
}

// DiffSummary counts changes by kind.
type DiffSummary struct {
	RowsModified  int `json:"rowsModified"`
	RowsAdded     int `json:"rowsAdded"`
	RowsRemoved   int `json:"rowsRemoved"`
	CellsChanged  int `json:"cellsChanged"`
	StatusChanges int `json:"statusChanges"`
	Edits         int `json:"edits"`
}

// DiffReport is the full comparison between two tables.
type DiffReport struct {
	Columns []string           `json:"columns"`
	Rows    []RowDiff          `json:"rows"`
	Summary DiffSummary        `json:"summary"`
	History []EditHistoryEntry `json:"history"`
}

// HasChanges reports whether any row differs.
func (d DiffReport) HasChanges() bool {
	return len(d.Rows) > 0
}

// Diff compares original against modified. history is attached to the report
// and used to count edits per cell.
func Diff(original, modified *TableData, history []EditHistoryEntry) DiffReport {
	if original == nil {
		original = &TableData{}
	}
	if modified == nil {
		modified = &TableData{}
	}

	report := DiffReport{
		Columns: unionColumns(original.Columns(), modified.Columns()),
		Rows:    make([]RowDiff, 0),
		History: slices.Clone(history),
	}
	if report.History == nil {
		report.History = make([]EditHistoryEntry, 0)
	}

	edits := make(map[string]int, len(history))
	for _, e := range history {
		edits[e.RowID+"/"+e.ColumnKey]++
	}
	report.Summary.Edits = len(history)

	for _, orig := range original.Rows {
		cur, ok := modified.Row(orig.ID)
		if !ok {
			report.Rows = append(report.Rows, RowDiff{RowID: orig.ID, Change: RowRemoved})
			report.Summary.RowsRemoved++
			continue
		}

		var cells []CellDiff
		for _, col := range report.Columns {
			a, b := orig.Cell(col), cur.Cell(col)
			valueChanged := a.Value != b.Value
			if !valueChanged && statusOf(a) == statusOf(b) {
				continue
			}
			cells = append(cells, CellDiff{
				ColumnKey:     col,
				Original:      a.Value,
				Current:       b.Value,
				OriginalState: statusOf(a),
				CurrentState:  statusOf(b),
				ValueChanged:  valueChanged,
				Edits:         edits[orig.ID+"/"+col],
			})
			if valueChanged {
				report.Summary.CellsChanged++
			} else {
				report.Summary.StatusChanges++
			}
		}

		if len(cells) > 0 {
			report.Rows = append(report.Rows, RowDiff{RowID: orig.ID, Change: RowModified, Cells: cells})
			report.Summary.RowsModified++
		}
	}

	for _, cur := range modified.Rows {
		if original.RowIndex(cur.ID) >= 0 {
			continue
		}
		report.Rows = append(report.Rows, RowDiff{RowID: cur.ID, Change: RowAdded})
		report.Summary.RowsAdded++
	}

	return report
}

func statusOf(c TableCell) CellStatus {
	if c.Metadata.Status == "" {
		return StatusOriginal
	}
	return c.Metadata.Status
}

func unionColumns(a, b []string) []string {
	out := slices.Clone(a)
	for _, col := range b {
		if !slices.Contains(out, col) {
			out = append(out, col)
		}
	}
	return out
}
