package core

// history.go implements linear undo/redo over committed cell edits.
//
// The log is an array plus a cursor. The cursor points at the last applied
// entry and starts at -1. Undo walks it back, redo walks it forward, and a new
// commit truncates everything after the cursor before appending. Status-only
// changes never enter the log.

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrNothingToUndo is returned by Undo when the cursor is before the first entry.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when the cursor is at the last entry.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// EditHistoryEntry records one committed value change.
// Timestamp is milliseconds since the Unix epoch.
type EditHistoryEntry struct {
	Timestamp int64  `json:"timestamp"`
	RowID     string `json:"rowId"`
	ColumnKey string `json:"columnKey"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
}

// Time returns the entry timestamp as a time.Time.
func (e EditHistoryEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// History is the undo/redo log for a single table.
// It is not safe for concurrent use.
type History struct {
	entries []EditHistoryEntry
	cursor  int
	now     func() time.Time
}

// NewHistory returns an empty history with nothing applied.
func NewHistory() *History {
	return &History{cursor: -1, now: time.Now}
}

// RestoreHistory returns a history holding entries, all treated as applied.
func RestoreHistory(entries []EditHistoryEntry) *History {
	return &History{
		entries: slices.Clone(entries),
		cursor:  len(entries) - 1,
		now:     time.Now,
	}
}

// Commit records a new edit. Any undone entries after the cursor are
// discarded first.
func (h *History) Commit(rowID, columnKey, oldValue, newValue string) EditHistoryEntry {
	entry := EditHistoryEntry{
		Timestamp: h.now().UnixMilli(),
		RowID:     rowID,
		ColumnKey: columnKey,
		OldValue:  oldValue,
		NewValue:  newValue,
	}

	h.entries = append(h.entries[:h.cursor+1], entry)
	h.cursor = len(h.entries) - 1
	return entry
}

// Undo reverts the entry at the cursor in t: the cell gets its old value and
// status original. On failure the cursor does not move.
func (h *History) Undo(t *TableData) (*TableData, EditHistoryEntry, error) {
	if !h.CanUndo() {
		return nil, EditHistoryEntry{}, ErrNothingToUndo
	}

	entry := h.entries[h.cursor]
	next, err := revertCell(t, entry.RowID, entry.ColumnKey, entry.OldValue, StatusOriginal)
	if err != nil {
		return nil, EditHistoryEntry{}, fmt.Errorf("undo: %w", err)
	}

	h.cursor--
	return next, entry, nil
}

// Redo re-applies the entry after the cursor in t: the cell gets its new value
// and status corrected. On failure the cursor does not move.
func (h *History) Redo(t *TableData) (*TableData, EditHistoryEntry, error) {
	if !h.CanRedo() {
		return nil, EditHistoryEntry{}, ErrNothingToRedo
	}

	entry := h.entries[h.cursor+1]
	next, _, err := SetCell(t, entry.RowID, entry.ColumnKey, entry.NewValue)
	if err != nil {
		return nil, EditHistoryEntry{}, fmt.Errorf("redo: %w", err)
	}

	h.cursor++
	return next, entry, nil
}

// CanUndo reports whether an applied entry exists.
func (h *History) CanUndo() bool {
	return h.cursor >= 0
}

// CanRedo reports whether an undone entry exists.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Cursor returns the index of the last applied entry, or -1.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of entries, applied or not.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the full log.
func (h *History) Entries() []EditHistoryEntry {
	return slices.Clone(h.entries)
}

// Applied returns a copy of the entries up to and including the cursor.
func (h *History) Applied() []EditHistoryEntry {
	return slices.Clone(h.entries[:h.cursor+1])
}
