package core

// table.go implements the in-memory table model for extracted data.
//
// A table is treated as an immutable value: SetCell and SetCellStatus return a
// new *TableData that shares every untouched row with the input. Only the
// edited row's cell map is copied, so holding on to an old snapshot (such as
// the session's original extraction) is always safe.

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// IDColumn is the reserved row identifier key.
const IDColumn = "id"

// DefaultConfidence is assigned to cells when the extractor reports none.
const DefaultConfidence = 1.0

var (
	// ErrRowNotFound is returned when a row ID does not exist in the table.
	ErrRowNotFound = errors.New("row not found")

	// ErrColumnNotFound is returned when a column key is not in the table headers.
	ErrColumnNotFound = errors.New("column not found")

	// ErrIDNotEditable is returned for any attempt to edit the id column.
	ErrIDNotEditable = errors.New("id column is not editable")

	// ErrInvalidStatus is returned for a cell status outside the known set.
	ErrInvalidStatus = errors.New("invalid cell status")
)

// CellStatus is the lifecycle tag of a cell.
type CellStatus string

const (
	StatusOriginal    CellStatus = "original"
	StatusEdited      CellStatus = "edited"
	StatusCorrected   CellStatus = "corrected"
	StatusIgnored     CellStatus = "ignored"
	StatusNeedsReview CellStatus = "needs-review"
)

// Valid reports whether s is one of the known statuses.
func (s CellStatus) Valid() bool {
	switch s {
	case StatusOriginal, StatusEdited, StatusCorrected, StatusIgnored, StatusNeedsReview:
		return true
	}
	return false
}

// ParseCellStatus converts a string to a CellStatus.
func ParseCellStatus(s string) (CellStatus, error) {
	status := CellStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// CellMetadata carries validation and edit state for a single cell.
type CellMetadata struct {
	Status        CellStatus `json:"status,omitempty"`
	Confidence    *float64   `json:"confidence,omitempty"`
	OriginalValue *string    `json:"originalValue,omitempty"`
}

// TableCell is a single value plus its metadata.
// Values are always strings since the source medium is OCR text.
type TableCell struct {
	Value    string       `json:"value"`
	Metadata CellMetadata `json:"metadata"`
}

// TableRow maps column keys to cells. The row identifier lives outside the
// map so it can never be edited or validated as a data column.
type TableRow struct {
	ID    string
	Cells map[string]TableCell
}

// Cell returns the cell for column, or an empty original cell if the row has
// no entry for it.
func (r TableRow) Cell(column string) TableCell {
	if c, ok := r.Cells[column]; ok {
		return c
	}
	return TableCell{Metadata: CellMetadata{Status: StatusOriginal}}
}

// Value returns the value of column, or "" if absent.
func (r TableRow) Value(column string) string {
	return r.Cells[column].Value
}

// TableData is the canonical in-memory table.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    []TableRow `json:"rows"`
}

// Construct builds a table from raw extraction output.
// Every row gets a fresh id of the form "row-N". Any "id" header or raw id
// value from the extractor is dropped.
func Construct(headers []string, rows []map[string]string) *TableData {
	return ConstructWithConfidence(headers, rows, nil)
}

// ConstructWithConfidence is Construct with per-cell extraction confidence.
// confidence may be nil or shorter than rows; missing entries default to 1.0.
func ConstructWithConfidence(headers []string, rows []map[string]string, confidence []map[string]float64) *TableData {
	cols := make([]string, 0, len(headers))
	for _, h := range headers {
		if h == IDColumn || slices.Contains(cols, h) {
			continue
		}
		cols = append(cols, h)
	}

	t := &TableData{
		Headers: cols,
		Rows:    make([]TableRow, len(rows)),
	}

	for i, raw := range rows {
		var conf map[string]float64
		if i < len(confidence) {
			conf = confidence[i]
		}

		cells := make(map[string]TableCell, len(cols))
		for _, col := range cols {
			c := DefaultConfidence
			if v, ok := conf[col]; ok {
				c = v
			}
			cells[col] = TableCell{
				Value: raw[col],
				Metadata: CellMetadata{
					Status:     StatusOriginal,
					Confidence: &c,
				},
			}
		}

		t.Rows[i] = TableRow{
			ID:    fmt.Sprintf("row-%d", i+1),
			Cells: cells,
		}
	}

	return t
}

// Columns returns the data headers, excluding the id column.
func (t *TableData) Columns() []string {
	cols := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if h != IDColumn {
			cols = append(cols, h)
		}
	}
	return cols
}

// HasColumn reports whether column is a data header.
func (t *TableData) HasColumn(column string) bool {
	return column != IDColumn && slices.Contains(t.Headers, column)
}

// RowIndex returns the position of rowID, or -1.
func (t *TableData) RowIndex(rowID string) int {
	for i := range t.Rows {
		if t.Rows[i].ID == rowID {
			return i
		}
	}
	return -1
}

// Row returns the row with the given id.
func (t *TableData) Row(rowID string) (TableRow, bool) {
	if i := t.RowIndex(rowID); i >= 0 {
		return t.Rows[i], true
	}
	return TableRow{}, false
}

// Cell returns a single cell, failing with ErrRowNotFound or ErrColumnNotFound.
func (t *TableData) Cell(rowID, column string) (TableCell, error) {
	i, err := t.locate(rowID, column)
	if err != nil {
		return TableCell{}, err
	}
	return t.Rows[i].Cell(column), nil
}

// Clone returns a deep copy of the table.
func (t *TableData) Clone() *TableData {
	if t == nil {
		return nil
	}
	out := &TableData{
		Headers: slices.Clone(t.Headers),
		Rows:    make([]TableRow, len(t.Rows)),
	}
	for i, r := range t.Rows {
		cells := make(map[string]TableCell, len(r.Cells))
		for k, c := range r.Cells {
			cells[k] = c.clone()
		}
		out.Rows[i] = TableRow{ID: r.ID, Cells: cells}
	}
	return out
}

// SetCell writes newValue into a cell and returns the new table plus the
// prior value. The first edit of a cell captures originalValue; later edits
// never overwrite it. The status becomes corrected.
func SetCell(t *TableData, rowID, column, newValue string) (*TableData, string, error) {
	if column == IDColumn {
		return nil, "", ErrIDNotEditable
	}
	i, err := t.locate(rowID, column)
	if err != nil {
		return nil, "", err
	}

	cell := t.Rows[i].Cell(column).clone()
	prior := cell.Value
	if cell.Metadata.OriginalValue == nil {
		cell.Metadata.OriginalValue = &prior
	}
	cell.Value = newValue
	cell.Metadata.Status = StatusCorrected

	return t.withCell(i, column, cell), prior, nil
}

// SetCellStatus changes only the status of a cell.
func SetCellStatus(t *TableData, rowID, column string, status CellStatus) (*TableData, error) {
	if column == IDColumn {
		return nil, ErrIDNotEditable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	i, err := t.locate(rowID, column)
	if err != nil {
		return nil, err
	}

	cell := t.Rows[i].Cell(column).clone()
	cell.Metadata.Status = status
	return t.withCell(i, column, cell), nil
}

// revertCell restores a value with the given status, leaving originalValue
// in place. Used by undo.
func revertCell(t *TableData, rowID, column, value string, status CellStatus) (*TableData, error) {
	if column == IDColumn {
		return nil, ErrIDNotEditable
	}
	i, err := t.locate(rowID, column)
	if err != nil {
		return nil, err
	}

	cell := t.Rows[i].Cell(column).clone()
	cell.Value = value
	cell.Metadata.Status = status
	return t.withCell(i, column, cell), nil
}

func (t *TableData) locate(rowID, column string) (int, error) {
	i := t.RowIndex(rowID)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
	}
	if !t.HasColumn(column) {
		return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return i, nil
}

// withCell returns a copy of t where only row i has a new cell map.
func (t *TableData) withCell(i int, column string, cell TableCell) *TableData {
	rows := slices.Clone(t.Rows)
	cells := maps.Clone(rows[i].Cells)
	if cells == nil {
		cells = make(map[string]TableCell, 1)
	}
	cells[column] = cell
	rows[i] = TableRow{ID: rows[i].ID, Cells: cells}

	return &TableData{Headers: t.Headers, Rows: rows}
}

func (c TableCell) clone() TableCell {
	out := c
	if c.Metadata.Confidence != nil {
		v := *c.Metadata.Confidence
		out.Metadata.Confidence = &v
	}
	if c.Metadata.OriginalValue != nil {
		v := *c.Metadata.OriginalValue
		out.Metadata.OriginalValue = &v
	}
	return out
}
