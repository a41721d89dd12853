package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// CSV parses comma-separated uploads. Quoting is lenient and rows may
// have differing widths.
type CSV struct{}

// Extract implements core.Extractor.
func (CSV) Extract(ctx context.Context, name string, data []byte) (*core.Extraction, error) {
	r := csv.NewReader(NewReader(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		if len(records)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return FromRecords(records)
}
