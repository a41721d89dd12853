package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tallyreview/internal/logging"
)

// EditCell sets one cell and records the edit. Setting a cell to its
// current value is a no-op and adds no history entry.
func (s *Service) EditCell(ctx context.Context, fileID, rowID, column, value string) (Snapshot, error) {
	if column == IDColumn {
		return Snapshot{}, ErrIDNotEditable
	}
	return s.withSession(fileID, true, func(sess *session) error {
		cell, err := sess.current.Cell(rowID, column)
		if err != nil {
			return err
		}
		if cell.Value == value {
			return nil
		}

		next, old, err := SetCell(sess.current, rowID, column, value)
		if err != nil {
			return err
		}

		sess.current = next
		sess.history.Commit(rowID, column, old, value)
		sess.violations = Validate(next, sess.rules)

		logging.WithFields(ctx, "file_id", fileID).Debug("cell edited",
			"row_id", rowID,
			"column", column,
			"violations", len(sess.violations),
		)
		return nil
	})
}

// SetCellStatus overrides the review status of one cell without touching
// its value or the edit history.
func (s *Service) SetCellStatus(ctx context.Context, fileID, rowID, column string, status CellStatus) (Snapshot, error) {
	return s.withSession(fileID, true, func(sess *session) error {
		next, err := SetCellStatus(sess.current, rowID, column, status)
		if err != nil {
			return err
		}
		sess.current = next
		return nil
	})
}

// Undo reverts the most recent applied edit.
func (s *Service) Undo(ctx context.Context, fileID string) (Snapshot, error) {
	return s.withSession(fileID, true, func(sess *session) error {
		next, entry, err := sess.history.Undo(sess.current)
		if err != nil {
			return err
		}
		sess.current = next
		sess.violations = Validate(next, sess.rules)

		logging.WithFields(ctx, "file_id", fileID).Debug("edit undone",
			"row_id", entry.RowID,
			"column", entry.ColumnKey,
		)
		return nil
	})
}

// Redo reapplies the next undone edit.
func (s *Service) Redo(ctx context.Context, fileID string) (Snapshot, error) {
	return s.withSession(fileID, true, func(sess *session) error {
		next, entry, err := sess.history.Redo(sess.current)
		if err != nil {
			return err
		}
		sess.current = next
		sess.violations = Validate(next, sess.rules)

		logging.WithFields(ctx, "file_id", fileID).Debug("edit redone",
			"row_id", entry.RowID,
			"column", entry.ColumnKey,
		)
		return nil
	})
}

// Validate recomputes the violations of the current table.
func (s *Service) Validate(fileID string) ([]ValidationError, error) {
	snap, err := s.withSession(fileID, false, func(sess *session) error {
		sess.violations = Validate(sess.current, sess.rules)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap.Errors, nil
}

// SetRules replaces the rule set and revalidates.
func (s *Service) SetRules(ctx context.Context, fileID string, rules Rules) (Snapshot, error) {
	if err := rules.Check(); err != nil {
		return Snapshot{}, err
	}
	rules = rules.Clone()

	return s.withSession(fileID, true, func(sess *session) error {
		sess.rules = rules
		sess.violations = Validate(sess.current, rules)

		logging.WithFields(ctx, "file_id", fileID).Info("rules updated",
			"columns", len(rules),
			"violations", len(sess.violations),
		)
		return nil
	})
}

// ApplyPreset replaces the rule set with a registered preset.
func (s *Service) ApplyPreset(ctx context.Context, fileID, name string) (Snapshot, error) {
	rules, err := PresetRules(name)
	if err != nil {
		return Snapshot{}, err
	}
	return s.SetRules(ctx, fileID, rules)
}

// Diff compares the original extraction with the current table.
func (s *Service) Diff(fileID string) (DiffReport, error) {
	var report DiffReport
	_, err := s.withSession(fileID, false, func(sess *session) error {
		report = Diff(sess.original, sess.current, sess.history.Applied())
		return nil
	})
	if err != nil {
		return DiffReport{}, fmt.Errorf("diff: %w", err)
	}
	return report, nil
}
