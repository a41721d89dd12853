package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// FileChangeLog writes each save's edit history to
// {dir}/{fileId}_{YYYYMMDD_HHMMSS}_changes.json.
type FileChangeLog struct {
	dir string
	now func() time.Time
}

// NewFileChangeLog returns a change log writing into dir.
func NewFileChangeLog(dir string) *FileChangeLog {
	return &FileChangeLog{dir: dir, now: time.Now}
}

// RecordChanges implements core.ChangeRecorder.
func (l *FileChangeLog) RecordChanges(ctx context.Context, fileID string, history []core.EditHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !core.ValidFileID(fileID) {
		return fmt.Errorf("%w: %q", core.ErrInvalidFileID, fileID)
	}
	if history == nil {
		history = []core.EditHistoryEntry{}
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", l.dir, err)
	}

	path := filepath.Join(l.dir, ChangeLogName(fileID, l.now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write change log: %w", err)
	}
	return nil
}

// ChangeLogName is the file name of a change log written at t.
func ChangeLogName(fileID string, t time.Time) string {
	return fileID + "_" + t.Format("20060102_150405") + "_changes.json"
}

// MultiChangeLog records to every log in order and reports all failures.
type MultiChangeLog []core.ChangeRecorder

// RecordChanges implements core.ChangeRecorder.
func (m MultiChangeLog) RecordChanges(ctx context.Context, fileID string, history []core.EditHistoryEntry) error {
	var errs []error
	for _, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.RecordChanges(ctx, fileID, history); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
