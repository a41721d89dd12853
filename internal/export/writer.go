// Package export renders review tables as xlsx, csv and Tally XML files.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"golang.org/x/sync/errgroup"
)

// Writer writes export files to disk. The zero value is ready to use.
type Writer struct {
	// FileMode is applied to written files (default 0644).
	FileMode os.FileMode
}

// New returns a Writer with default settings.
func New() *Writer {
	return &Writer{FileMode: 0o644}
}

// Export writes {dir}/{baseName}.{format} for each format concurrently and
// returns the written paths. A partially written set is removed on error.
func (w *Writer) Export(ctx context.Context, dir, baseName string, t *core.TableData, formats []core.ExportFormat) (map[core.ExportFormat]string, error) {
	if t == nil {
		return nil, fmt.Errorf("export %s: no table", baseName)
	}
	if len(formats) == 0 {
		formats = core.AllFormats
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var mu sync.Mutex
	paths := make(map[core.ExportFormat]string, len(formats))

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range formats {
		g.Go(func() error {
			path := filepath.Join(dir, baseName+"."+string(f))
			if err := w.writeFile(ctx, path, f, t); err != nil {
				return err
			}
			mu.Lock()
			paths[f] = path
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, p := range paths {
			_ = os.Remove(p)
		}
		return nil, err
	}
	return paths, nil
}

// writeFile renders into a temp file next to path and renames it into
// place, so readers never see a half-written export.
func (w *Writer) writeFile(ctx context.Context, path string, f core.ExportFormat, t *core.TableData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTo(tmp, f, t); err != nil {
		tmp.Close()
		return fmt.Errorf("render %s: %w", f, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	mode := w.FileMode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// WriteTo renders t in format f to out.
func WriteTo(out io.Writer, f core.ExportFormat, t *core.TableData) error {
	switch f {
	case core.FormatXLSX:
		return WriteXLSX(out, t)
	case core.FormatCSV:
		return WriteCSV(out, t)
	case core.FormatXML:
		return WriteTallyXML(out, t)
	}
	return fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, f)
}

// records returns the header row followed by one row of values per table row.
func records(t *core.TableData) [][]string {
	cols := t.Columns()
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, cols)
	for _, row := range t.Rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = row.Value(c)
		}
		out = append(out, rec)
	}
	return out
}
