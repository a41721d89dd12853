package export

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// WriteCSV writes the table as RFC 4180 CSV with a header row.
func WriteCSV(w io.Writer, t *core.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records(t)); err != nil {
		return err
	}
	return cw.Error()
}
