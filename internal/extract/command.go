package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// Command extracts text with an external tool and splits it into columns.
// The upload is written to a temporary file because both pdftotext and
// tesseract take a path.
type Command struct {
	binPath string
	args    func(path string) []string
}

// NewPdfToText runs pdftotext -layout, which keeps column alignment.
// If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *Command {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &Command{
		binPath: binPath,
		args: func(path string) []string {
			return []string{"-layout", path, "-"}
		},
	}
}

// NewTesseract runs tesseract OCR with output on stdout.
// If binPath is empty, "tesseract" is used; an empty lang means eng.
func NewTesseract(binPath, lang string) *Command {
	if binPath == "" {
		binPath = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &Command{
		binPath: binPath,
		args: func(path string) []string {
			return []string{path, "stdout", "-l", lang, "--psm", "6"}
		},
	}
}

// Extract implements core.Extractor.
func (c *Command) Extract(ctx context.Context, name string, data []byte) (*core.Extraction, error) {
	text, err := c.Text(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return FromText(text)
}

// Text returns the raw tool output for data.
func (c *Command) Text(ctx context.Context, name string, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "tallyreview-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "input"+strings.ToLower(filepath.Ext(name)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binPath, c.args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%s failed for %s: %w: %s",
			filepath.Base(c.binPath), name, err, strings.TrimSpace(stderr.String()))
	}
	return string(bytes.ToValidUTF8(stdout.Bytes(), []byte("?"))), nil
}
