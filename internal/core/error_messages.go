package core

// Error codes shown to users. Support staff look a code up here, read the
// pattern that produced it and, for ERR000, check the logs for the
// underlying error.
//
//	TBL  table edits        (row, column, id column, cell status)
//	HIST undo and redo
//	IMP  rules and report documents; the session is untouched on failure
//	SES  review sessions and file identifiers
//	PRE  rule presets
//	FILE uploads            (size, format, encoding, missing, empty, gone)
//	EXT  table extraction   (no tables, missing tool, unreadable file)
//	EXP  converted and corrected output
//	RATE throttling
//	REQ  request lifecycle and malformed bodies
//	DB   the optional PostgreSQL change log
//	ERR000 anything else
//
// Patterns are lower case and matched with strings.Contains against the
// lower-cased error text. The first match wins.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Documents are checked first: a rejected import can mention a missing column.
	{"import rules", UserMessage{Code: "IMP001", Message: "The rules file could not be imported", Action: "Export the rules again or fix the JSON document"}},
	{"import report", UserMessage{Code: "IMP002", Message: "The report file could not be imported", Action: "Use a validation report exported from this application"}},

	// Table edits and history.
	{"row not found", UserMessage{Code: "TBL001", Message: "Row not found", Action: "Reload the review grid and try again"}},
	{"column not found", UserMessage{Code: "TBL002", Message: "Column not found", Action: "Check the column name against the table headers"}},
	{"id column is not editable", UserMessage{Code: "TBL003", Message: "Row identifiers cannot be edited", Action: "Edit a data column instead"}},
	{"invalid cell status", UserMessage{Code: "TBL004", Message: "Unknown cell status", Action: "Use original, edited, corrected, ignored or needs-review"}},
	{"nothing to undo", UserMessage{Code: "HIST001", Message: "There are no edits to undo", Action: "Make an edit first"}},
	{"nothing to redo", UserMessage{Code: "HIST002", Message: "There are no undone edits to redo", Action: "Undo an edit first"}},

	// Sessions and presets.
	{"session not found", UserMessage{Code: "SES001", Message: "Review session not found", Action: "The session may have expired. Convert the file again"}},
	{"invalid file id", UserMessage{Code: "SES002", Message: "Invalid file identifier", Action: "Use the file_id returned by the upload"}},
	{"preset not found", UserMessage{Code: "PRE001", Message: "Rule preset not found", Action: "Choose one of the presets listed by /api/presets"}},

	// Uploads.
	{"file too large", UserMessage{Code: "FILE001", Message: "File exceeds maximum size limit (100MB)", Action: "Split the file into smaller chunks"}},
	{"unsupported file format", UserMessage{Code: "FILE002", Message: "Unsupported file format", Action: "Upload a PDF, PNG, JPG, CSV or XLSX file"}},
	{"encoding error", UserMessage{Code: "FILE003", Message: "File contains invalid characters", Action: "Save file as UTF-8 encoding"}},
	{"no file provided", UserMessage{Code: "FILE004", Message: "No file was selected", Action: "Please select a file to upload"}},
	{"empty file", UserMessage{Code: "FILE005", Message: "The uploaded file is empty", Action: "Please upload a file with data"}},
	{"upload not found", UserMessage{Code: "FILE006", Message: "Uploaded file not found", Action: "Upload the file again"}},

	// Extraction and export.
	{"no tables found", UserMessage{Code: "EXT001", Message: "No tables found in the file", Action: "Check that the document contains a tally table"}},
	{"executable file not found", UserMessage{Code: "EXT002", Message: "The text extraction tool is not installed", Action: "Install pdftotext and tesseract or contact support"}},
	{"write corrected files", UserMessage{Code: "EXP001", Message: "Corrected files could not be written", Action: "Please try saving again"}},
	{"write converted files", UserMessage{Code: "EXP002", Message: "Converted files could not be written", Action: "Please try converting again"}},
	{"fileid is required", UserMessage{Code: "EXP003", Message: "Save request is incomplete", Action: "Include fileId and modifiedData"}},
	{"modifieddata is required", UserMessage{Code: "EXP003", Message: "Save request is incomplete", Action: "Include fileId and modifiedData"}},
	{"file not found", UserMessage{Code: "EXP004", Message: "File not found", Action: "Save your edits before downloading"}},

	// Throttling and request lifecycle.
	{"rate limit", UserMessage{Code: "RATE001", Message: "Too many requests", Action: "Please wait a moment before trying again"}},
	{"too many concurrent conversions", UserMessage{Code: "RATE002", Message: "System is busy processing other files", Action: "Please wait a moment and try again"}},
	{"context canceled", UserMessage{Code: "REQ001", Message: "Request was cancelled", Action: "Please try again"}},
	{"context deadline exceeded", UserMessage{Code: "REQ002", Message: "Request timed out", Action: "Try a smaller file or try again later"}},
	{"invalid request", UserMessage{Code: "REQ003", Message: "The request could not be understood", Action: "Check the request body and parameters"}},

	// Extractor errors are wrapped as "extract <name>: ..." and land here
	// when nothing more specific matched.
	{"extract ", UserMessage{Code: "EXT003", Message: "The file could not be read", Action: "Check the file is a readable scan or spreadsheet"}},

	// PostgreSQL change log.
	{"duplicate key", UserMessage{Code: "DB001", Message: "A change record with this ID already exists", Action: "Please try saving again"}},
	{"connection refused", UserMessage{Code: "DB004", Message: "Unable to connect to database", Action: "Please try again in a few moments"}},
	{"connection reset", UserMessage{Code: "DB005", Message: "Database connection was interrupted", Action: "Please try again"}},
	{"timeout", UserMessage{Code: "DB006", Message: "Operation timed out", Action: "Please try again later"}},
	{"deadlock", UserMessage{Code: "DB007", Message: "Database was busy with conflicting operations", Action: "Please try again"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the user message for the first pattern found in err,
// or the ERR000 fallback. A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
