package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/store"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps request bodies that are not file uploads.
const maxJSONBody = 32 << 20

// requestContext tags the request context with the client for the change log.
func requestContext(r *http.Request) context.Context {
	return core.WithEditor(r.Context(), core.Editor{IP: clientIP(r), UserAgent: r.UserAgent()})
}

func fileIDParam(r *http.Request) string {
	return chi.URLParam(r, "fileId")
}

// decodeJSON decodes a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

// uploadedFile reads the multipart "file" field, enforcing the configured
// size limit.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (name string, data []byte, err error) {
	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, fmt.Errorf("%w: more than %d bytes", store.ErrFileTooLarge, limit)
		}
		return "", nil, badRequest("no file provided")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, badRequest("no file provided")
	}
	defer file.Close()

	if header.Size > limit {
		return "", nil, fmt.Errorf("%w: more than %d bytes", store.ErrFileTooLarge, limit)
	}
	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, core.ErrEmptyFile
	}
	return header.Filename, data, nil
}

// requestDocument returns a JSON document sent either as a multipart
// "file" field or as the raw request body.
func (s *Server) requestDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		_, data, err := s.uploadedFile(w, r)
		return data, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	return data, nil
}

// serveFile streams a stored export as an attachment.
func serveFile(w http.ResponseWriter, r *http.Request, path string, format core.ExportFormat, filename string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s", store.ErrFileNotFound, filename)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", format.MediaType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
	return nil
}

// writeAttachment writes an in-memory JSON document as a download.
func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
