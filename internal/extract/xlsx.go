package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/xuri/excelize/v2"
)

// XLSX reads the first sheet of an Excel workbook.
type XLSX struct{}

// Extract implements core.Extractor.
func (XLSX) Extract(ctx context.Context, name string, data []byte) (*core.Extraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrNoTables
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return FromRecords(rows)
}
