package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "row not found maps correctly",
			err:         fmt.Errorf("%w: row-9", ErrRowNotFound),
			wantCode:    "TBL001",
			wantMessage: "Row not found",
		},
		{
			name:        "id edit maps correctly",
			err:         ErrIDNotEditable,
			wantCode:    "TBL003",
			wantMessage: "Row identifiers cannot be edited",
		},
		{
			name:        "nothing to undo maps correctly",
			err:         ErrNothingToUndo,
			wantCode:    "HIST001",
			wantMessage: "There are no edits to undo",
		},
		{
			name:        "import error wins over column not found",
			err:         &ImportError{Op: "rules", Err: ErrColumnNotFound},
			wantCode:    "IMP001",
			wantMessage: "The rules file could not be imported",
		},
		{
			name:        "report import maps correctly",
			err:         &ImportError{Op: "report", Err: errors.New("parse: unexpected EOF")},
			wantCode:    "IMP002",
			wantMessage: "The report file could not be imported",
		},
		{
			name:        "session not found maps correctly",
			err:         fmt.Errorf("%w: abc", ErrSessionNotFound),
			wantCode:    "SES001",
			wantMessage: "Review session not found",
		},
		{
			name:        "unsupported format maps correctly",
			err:         fmt.Errorf("%w: \".gif\"", ErrUnsupportedFormat),
			wantCode:    "FILE002",
			wantMessage: "Unsupported file format",
		},
		{
			name:        "no tables maps correctly",
			err:         ErrNoTables,
			wantCode:    "EXT001",
			wantMessage: "No tables found in the file",
		},
		{
			name:        "missing tool maps correctly",
			err:         errors.New(`extract scan.pdf: exec: "pdftotext": executable file not found in $PATH`),
			wantCode:    "EXT002",
			wantMessage: "The text extraction tool is not installed",
		},
		{
			name:        "busy limiter maps correctly",
			err:         ErrTooManyConversions,
			wantCode:    "RATE002",
			wantMessage: "System is busy processing other files",
		},
		{
			name:        "extraction deadline maps to request timeout",
			err:         fmt.Errorf("extract scan.png: %w", errors.New("context deadline exceeded")),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "malformed body maps to request error",
			err:         errors.New("invalid request: unexpected EOF"),
			wantCode:    "REQ003",
			wantMessage: "The request could not be understood",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NOTHING TO REDO"),
			wantCode:    "HIST002",
			wantMessage: "There are no undone edits to redo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyFile)

	expected := "The uploaded file is empty (Code: FILE005). Please upload a file with data"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrColumnNotFound,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
