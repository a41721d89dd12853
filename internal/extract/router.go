package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/config"
	"github.com/JonMunkholm/tallyreview/internal/core"
)

// Router dispatches to an extractor by file extension.
type Router struct {
	byExt map[string]core.Extractor
}

// New builds the default router: CSV and XLSX natively, PDF through
// pdftotext and images through tesseract.
func New(cfg config.ExtractConfig) *Router {
	ocr := NewTesseract(cfg.TesseractPath, cfg.Language)
	return &Router{byExt: map[string]core.Extractor{
		".csv":  CSV{},
		".xlsx": XLSX{},
		".pdf":  NewPdfToText(cfg.PdfToTextPath),
		".png":  ocr,
		".jpg":  ocr,
		".jpeg": ocr,
	}}
}

// Handle registers or replaces the extractor for ext (".pdf").
func (r *Router) Handle(ext string, e core.Extractor) {
	if r.byExt == nil {
		r.byExt = make(map[string]core.Extractor)
	}
	r.byExt[strings.ToLower(ext)] = e
}

// Extract implements core.Extractor.
func (r *Router) Extract(ctx context.Context, name string, data []byte) (*core.Extraction, error) {
	ext := strings.ToLower(filepath.Ext(name))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	if len(data) == 0 {
		return nil, core.ErrEmptyFile
	}
	return e.Extract(ctx, name, data)
}
