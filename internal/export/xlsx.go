package export

import (
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName     = "Sheet1"
	maxColumnWide = 60.0
)

// WriteXLSX writes the table to a single-sheet workbook. Plain numeric
// values are stored as numbers; everything else stays text.
func WriteXLSX(w io.Writer, t *core.TableData) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	recs := records(t)
	widths := make([]int, len(recs[0]))
	for _, rec := range recs {
		for j, v := range rec {
			widths[j] = max(widths[j], utf8.RuneCountInString(v))
		}
	}

	for j, n := range widths {
		if err := sw.SetColWidth(j+1, j+1, min(float64(n)+2, maxColumnWide)); err != nil {
			return err
		}
	}

	for i, rec := range recs {
		row := make([]any, len(rec))
		for j, v := range rec {
			if i == 0 {
				row[j] = excelize.Cell{StyleID: bold, Value: v}
				continue
			}
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func cellValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil && v == core.FormatNumber(f) {
		return f
	}
	return v
}
