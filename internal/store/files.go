// Package store persists uploads, conversion outputs and change logs.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/config"
	"github.com/JonMunkholm/tallyreview/internal/core"
)

var (
	// ErrUploadNotFound is returned when no stored upload matches a file ID.
	ErrUploadNotFound = errors.New("upload not found")

	// ErrFileNotFound is returned for missing converted or corrected outputs.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Files is the on-disk layout:
//
//	{uploads}/{fileId}{ext}
//	{converted}/{fileId}.{format}
//	{corrected}/{fileId}_corrected.{format}
type Files struct {
	cfg config.StorageConfig
}

// NewFiles returns a Files rooted at the configured directories.
func NewFiles(cfg config.StorageConfig) *Files {
	return &Files{cfg: cfg}
}

// Init creates every storage directory.
func (f *Files) Init() error {
	for _, dir := range []string{f.cfg.UploadDir, f.cfg.ConvertedDir, f.cfg.CorrectedDir, f.cfg.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload streams r to {uploads}/{fileId}{ext}. Reading stops at
// limit+1 bytes so an oversized upload never fully lands on disk.
// A limit of zero or less means unlimited.
func (f *Files) SaveUpload(fileID, ext string, r io.Reader, limit int64) (string, int64, error) {
	if !core.ValidFileID(fileID) {
		return "", 0, fmt.Errorf("%w: %q", core.ErrInvalidFileID, fileID)
	}
	if err := os.MkdirAll(f.cfg.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create %s: %w", f.cfg.UploadDir, err)
	}

	tmp, err := os.CreateTemp(f.cfg.UploadDir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		return "", 0, core.ErrEmptyFile
	}
	if limit > 0 && n > limit {
		return "", 0, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}

	path := filepath.Join(f.cfg.UploadDir, fileID+strings.ToLower(ext))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("store upload: %w", err)
	}
	return path, n, nil
}

// FindUpload returns the stored upload for fileID.
func (f *Files) FindUpload(fileID string) (string, error) {
	if !core.ValidFileID(fileID) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidFileID, fileID)
	}
	for _, ext := range core.UploadExtensions {
		path := filepath.Join(f.cfg.UploadDir, fileID+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUploadNotFound, fileID)
}

// RemoveUpload deletes the stored upload for fileID, if any.
func (f *Files) RemoveUpload(fileID string) error {
	path, err := f.FindUpload(fileID)
	if errors.Is(err, ErrUploadNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// ConvertedFile resolves a converted output by file name ("{fileId}.csv").
// Names that could escape the directory are rejected as not found.
func (f *Files) ConvertedFile(name string) (string, core.ExportFormat, error) {
	stem, ext, ok := strings.Cut(name, ".")
	if !ok || !core.ValidFileID(stem) {
		return "", "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	format, err := core.ParseExportFormat(ext)
	if err != nil {
		return "", "", err
	}
	path := filepath.Join(f.cfg.ConvertedDir, stem+"."+string(format))
	if err := CheckFile(path); err != nil {
		return "", "", err
	}
	return path, format, nil
}

// CheckFile returns ErrFileNotFound unless path is a regular file.
func CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, filepath.Base(path))
	}
	return nil
}
