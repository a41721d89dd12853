package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for upload or export formats outside the allowed set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when an upload has no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoTables is returned when extraction finds no tabular data.
	ErrNoTables = errors.New("no tables found")
)

// Extraction is the raw output of an extractor: ordered headers and one
// value map per row. Confidence is optional and parallel to Rows.
type Extraction struct {
	Headers    []string
	Rows       []map[string]string
	Confidence []map[string]float64
}

// Table constructs the review table for this extraction.
func (e *Extraction) Table() *TableData {
	return ConstructWithConfidence(e.Headers, e.Rows, e.Confidence)
}

// Extractor turns uploaded file bytes into tabular data.
// name is the original file name and selects the parser by extension.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (*Extraction, error)
}

// ExportFormat is an output file format.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatXML  ExportFormat = "xml"
)

// AllFormats lists every export format in output order.
var AllFormats = []ExportFormat{FormatXLSX, FormatCSV, FormatXML}

// ParseExportFormat converts a string to an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatXLSX, FormatCSV, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ParseExportFormats parses a comma-separated list. An empty list means all.
func ParseExportFormats(s string) ([]ExportFormat, error) {
	if strings.TrimSpace(s) == "" {
		return AllFormats, nil
	}
	var out []ExportFormat
	seen := make(map[ExportFormat]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseExportFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return AllFormats, nil
	}
	return out, nil
}

// MediaType returns the Content-Type for the format.
func (f ExportFormat) MediaType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv"
	case FormatXML:
		return "application/xml"
	}
	return "application/octet-stream"
}

// Exporter renders a table to files. It returns the written path per format.
type Exporter interface {
	Export(ctx context.Context, dir, baseName string, t *TableData, formats []ExportFormat) (map[ExportFormat]string, error)
}

// ChangeRecorder persists the edit history of a save.
type ChangeRecorder interface {
	RecordChanges(ctx context.Context, fileID string, history []EditHistoryEntry) error
}
