package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/tallyreview/internal/logging"
)

// UploadExtensions are the accepted upload file extensions.
var UploadExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".csv", ".xlsx"}

// CheckUploadName returns the lower-cased extension of name or
// ErrUnsupportedFormat when it is not accepted.
func CheckUploadName(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range UploadExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	FileID  string // empty for a fresh ID
	Name    string // original file name, selects the extractor
	Data    []byte
	Formats []ExportFormat // empty for all
}

// ConvertResult is the outcome of a conversion.
type ConvertResult struct {
	Session Snapshot
	Files   map[ExportFormat]string
}

// Convert extracts a table from an uploaded file, opens a review session
// for it and writes the first-pass exports to the converted directory.
// Extraction runs inside a conversion slot and the upload timeout.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if _, err := CheckUploadName(req.Name); err != nil {
		return nil, err
	}
	if req.FileID == "" {
		req.FileID = NewFileID()
	}
	if !ValidFileID(req.FileID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileID, req.FileID)
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = AllFormats
	}

	logger := logging.WithFields(ctx, "file_id", req.FileID, "file_name", req.Name)
	start := time.Now()

	var ext *Extraction
	err := s.limiter.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()

		var err error
		ext, err = s.extractor.Extract(ctx, req.Name, req.Data)
		return err
	})
	if err != nil {
		logger.Warn("extraction failed", "error", err)
		return nil, fmt.Errorf("extract %s: %w", req.Name, err)
	}
	if ext == nil || len(ext.Headers) == 0 || len(ext.Rows) == 0 {
		return nil, ErrNoTables
	}

	// The session only becomes visible once its converted files exist.
	sess, err := s.newSession(ctx, req.FileID, req.Name, ext)
	if err != nil {
		return nil, err
	}

	files, err := s.exporter.Export(ctx, s.cfg.Storage.ConvertedDir, sess.id, sess.current, formats)
	if err != nil {
		return nil, fmt.Errorf("write converted files: %w", err)
	}
	snap := s.publish(ctx, sess)

	logger.Info("conversion complete",
		"rows", len(snap.Table.Rows),
		"formats", len(files),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &ConvertResult{Session: snap, Files: files}, nil
}

// SaveResult is the outcome of a save.
type SaveResult struct {
	FileID string
	Files  map[ExportFormat]string
}

// Save writes the corrected outputs for a live session and records its
// edit history.
func (s *Service) Save(ctx context.Context, fileID string) (*SaveResult, error) {
	payload, err := s.SavePayload(fileID)
	if err != nil {
		return nil, err
	}
	return s.SaveEdits(ctx, payload)
}

// SaveEdits writes {fileId}_corrected.{xlsx,csv,xml} from the modified
// table and records the edit history. The payload does not need a live
// session.
func (s *Service) SaveEdits(ctx context.Context, payload SavePayload) (*SaveResult, error) {
	if err := payload.Check(); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if !ValidFileID(payload.FileID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileID, payload.FileID)
	}

	logger := logging.WithFields(ctx, "file_id", payload.FileID)

	files, err := s.exporter.Export(ctx, s.cfg.Storage.CorrectedDir, CorrectedBaseName(payload.FileID), payload.ModifiedData, AllFormats)
	if err != nil {
		return nil, fmt.Errorf("write corrected files: %w", err)
	}

	if err := s.changes.RecordChanges(ctx, payload.FileID, payload.EditHistory); err != nil {
		return nil, fmt.Errorf("record changes: %w", err)
	}

	attrs := []any{
		"rows", len(payload.ModifiedData.Rows),
		"edits", len(payload.EditHistory),
	}
	if payload.OriginalData != nil {
		d := Diff(payload.OriginalData, payload.ModifiedData, payload.EditHistory)
		attrs = append(attrs, "changed", d.HasChanges(), "cells_changed", d.Summary.CellsChanged)
	}
	logger.Info("edits saved", attrs...)

	return &SaveResult{FileID: payload.FileID, Files: files}, nil
}

// CorrectedBaseName is the file name stem of a saved output.
func CorrectedBaseName(fileID string) string {
	return fileID + "_corrected"
}

// CorrectedFile returns the path of a saved output.
func (s *Service) CorrectedFile(fileID string, format ExportFormat) (string, error) {
	if !ValidFileID(fileID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileID, fileID)
	}
	if _, err := ParseExportFormat(string(format)); err != nil {
		return "", err
	}
	return filepath.Join(s.cfg.Storage.CorrectedDir, CorrectedBaseName(fileID)+"."+string(format)), nil
}

// MarkExported records a download of format for a live session. It is a
// no-op when the session has ended.
func (s *Service) MarkExported(fileID string, format ExportFormat) {
	_, _ = s.withSession(fileID, true, func(sess *session) error {
		sess.exported[format] = s.now()
		return nil
	})
}
