package core

import (
	"context"

	"github.com/JonMunkholm/tallyreview/internal/logging"
)

// ExportRules serializes the session rule set.
func (s *Service) ExportRules(fileID string) ([]byte, error) {
	snap, err := s.Get(fileID)
	if err != nil {
		return nil, err
	}
	return ExportRules(snap.Rules)
}

// ImportRules parses a rules document and, on success, replaces the
// session rule set. A failed import leaves the session untouched.
func (s *Service) ImportRules(ctx context.Context, fileID string, data []byte) (Snapshot, error) {
	if _, err := s.lookup(fileID); err != nil {
		return Snapshot{}, err
	}

	rules, err := ImportRules(data)
	if err != nil {
		logging.WithFields(ctx, "file_id", fileID).Warn("rules import rejected", "error", err)
		return Snapshot{}, err
	}
	return s.SetRules(ctx, fileID, rules)
}

// ExportReport serializes the session table, violations, rules and history.
func (s *Service) ExportReport(fileID string) ([]byte, error) {
	snap, err := s.Get(fileID)
	if err != nil {
		return nil, err
	}
	return ExportReport(snap.Table, snap.Errors, snap.Rules, snap.History)
}

// ImportReport parses a report and, on success, replaces the session table,
// violations, rules and history in one step. Imported history counts as
// applied. The original extraction is kept as the diff baseline.
func (s *Service) ImportReport(ctx context.Context, fileID string, data []byte) (Snapshot, error) {
	if _, err := s.lookup(fileID); err != nil {
		return Snapshot{}, err
	}

	report, err := ImportReport(data)
	if err != nil {
		logging.WithFields(ctx, "file_id", fileID).Warn("report import rejected", "error", err)
		return Snapshot{}, err
	}

	return s.withSession(fileID, true, func(sess *session) error {
		sess.current = report.Data
		sess.violations = report.Errors
		sess.rules = report.Rules
		sess.history = RestoreHistory(report.History)

		logging.WithFields(ctx, "file_id", fileID).Info("report imported",
			"rows", len(report.Data.Rows),
			"violations", len(report.Errors),
			"history", len(report.History),
		)
		return nil
	})
}

// SavePayload builds the save record for the live session.
func (s *Service) SavePayload(fileID string) (SavePayload, error) {
	var payload SavePayload
	_, err := s.withSession(fileID, false, func(sess *session) error {
		payload = SavePayload{
			FileID:       sess.id,
			OriginalData: sess.original,
			ModifiedData: sess.current,
			EditHistory:  sess.history.Applied(),
		}
		if payload.EditHistory == nil {
			payload.EditHistory = []EditHistoryEntry{}
		}
		return nil
	})
	if err != nil {
		return SavePayload{}, err
	}
	return payload, nil
}
