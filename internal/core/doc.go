// Package core provides the review engine for extracted tally sheets.
//
// This package holds every piece of domain logic independent of any UI or
// transport layer. Web handlers, the CLI and tests use it unchanged.
//
// # Architecture
//
// The package is organized around a handful of concepts:
//
//   - Table model: [TableData] built by [Construct] from extraction output.
//     Every cell carries a value and [CellMetadata]. Mutations go through
//     [SetCell] and [SetCellStatus], which return a fresh table and leave the
//     input untouched.
//   - Validation: [Validate] evaluates a [Rules] mapping against a table and
//     returns an ordered list of [ValidationError]. It is a pure function.
//   - History: [History] records committed value edits and provides linear
//     undo and redo with branch truncation on a new commit.
//   - Diff: [Diff] compares the frozen original against the live table.
//   - Reports: [ExportRules], [ImportRules], [ExportReport] and [ImportReport]
//     serialize session state as JSON. Imports are all-or-nothing.
//   - Service: [Service] owns the live review sessions for the server and
//     wires the engine to extraction, export and change logging.
//
// # Editing Flow
//
//  1. [Service.Convert] runs the [Extractor] and opens a session
//  2. [Service.EditCell] applies [SetCell] and commits to the [History]
//  3. Validation re-runs after every change to data or rules
//  4. [Service.Save] writes corrected outputs and records the edit log
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - TBL001-TBL004: Table structure errors (row, column, id, status)
//   - HIST001-HIST002: Undo/redo availability
//   - IMP001-IMP002: Rule and report import failures
//   - FILE001-FILE005: Upload errors (size, format, empty, missing)
//   - SES001: Unknown or expired review session
package core
