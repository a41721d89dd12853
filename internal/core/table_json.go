package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON writes the row as a flat object: the reserved "id" key plus one
// key per column.
func (r TableRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]TableCell, len(r.Cells)+1)
	for k, c := range r.Cells {
		out[k] = c
	}
	out[IDColumn] = TableCell{
		Value:    r.ID,
		Metadata: CellMetadata{Status: StatusOriginal},
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat row object. The id may be a cell object or a
// bare string.
func (r *TableRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("row must be an object")
	}

	idRaw, ok := raw[IDColumn]
	if !ok {
		return fmt.Errorf("row is missing %q", IDColumn)
	}
	var id string
	if err := json.Unmarshal(idRaw, &id); err != nil {
		var cell TableCell
		if err := json.Unmarshal(idRaw, &cell); err != nil {
			return fmt.Errorf("row id: %w", err)
		}
		id = cell.Value
	}
	if id == "" {
		return fmt.Errorf("row id is empty")
	}
	delete(raw, IDColumn)

	cells := make(map[string]TableCell, len(raw))
	for k, v := range raw {
		var cell TableCell
		if err := json.Unmarshal(v, &cell); err != nil {
			return fmt.Errorf("row %s column %q: %w", id, k, err)
		}
		cells[k] = cell
	}

	r.ID = id
	r.Cells = cells
	return nil
}

// UnmarshalJSON normalizes non-string values (numbers, booleans) to their
// text form. null becomes "".
func (c *TableCell) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value    json.RawMessage `json:"value"`
		Metadata CellMetadata    `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := cellText(raw.Value)
	if err != nil {
		return err
	}
	if raw.Metadata.Status != "" && !raw.Metadata.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, raw.Metadata.Status)
	}

	c.Value = value
	c.Metadata = raw.Metadata
	return nil
}

func cellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("cell value must be a scalar")
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}
