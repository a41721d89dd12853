package web

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/logging"
	"github.com/JonMunkholm/tallyreview/internal/store"
	"github.com/go-chi/chi/v5"
)

type convertResponse struct {
	Status         string                       `json:"status"`
	Message        string                       `json:"message"`
	FileID         string                       `json:"file_id"`
	ConvertedFiles map[core.ExportFormat]string `json:"converted_files"`
	Table          *core.TableData              `json:"table"`
	Errors         []core.ValidationError       `json:"errors"`
}

type saveResponse struct {
	Success   bool                         `json:"success"`
	FileID    string                       `json:"file_id"`
	Downloads map[core.ExportFormat]string `json:"downloads"`
}

// handleUpload stores an upload for a later convert call.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respondError(w, r, badRequest("no file provided"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, badRequest("no file provided"))
		return
	}
	defer file.Close()

	ext, err := core.CheckUploadName(header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	fileID := core.NewFileID()
	if _, _, err := s.files.SaveUpload(fileID, ext, file, s.cfg.Upload.MaxFileSize); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.ForSession(r.Context(), fileID).Info("upload stored", "file_name", header.Filename)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "File uploaded successfully",
		"file_id": fileID,
	})
}

// handleConvertStored converts a previous upload and removes it.
func (s *Server) handleConvertStored(w http.ResponseWriter, r *http.Request) {
	fileID := fileIDParam(r)
	if !core.ValidUploadID(fileID) {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrInvalidFileID, fileID))
		return
	}
	formats, err := core.ParseExportFormats(r.URL.Query().Get("formats"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	path, err := s.files.FindUpload(fileID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Convert(requestContext(r), core.ConvertRequest{
		FileID:  fileID,
		Name:    filepath.Base(path),
		Data:    data,
		Formats: formats,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.files.RemoveUpload(fileID); err != nil {
		logging.ForSession(r.Context(), fileID).Warn("failed to remove upload", "error", err)
	}
	writeJSON(w, http.StatusOK, newConvertResponse(res))
}

// handleConvertUpload uploads and converts in one request.
func (s *Server) handleConvertUpload(w http.ResponseWriter, r *http.Request) {
	res, err := s.convertUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newConvertResponse(res))
}

func (s *Server) convertUpload(w http.ResponseWriter, r *http.Request) (*core.ConvertResult, error) {
	formats, err := core.ParseExportFormats(r.URL.Query().Get("formats"))
	if err != nil {
		return nil, err
	}
	name, data, err := s.uploadedFile(w, r)
	if err != nil {
		return nil, err
	}
	return s.service.Convert(requestContext(r), core.ConvertRequest{
		Name:    name,
		Data:    data,
		Formats: formats,
	})
}

func newConvertResponse(res *core.ConvertResult) convertResponse {
	links := make(map[core.ExportFormat]string, len(res.Files))
	for f := range res.Files {
		links[f] = "/api/converted/" + res.Session.FileID + "." + string(f)
	}
	return convertResponse{
		Status:         "success",
		Message:        "File converted successfully",
		FileID:         res.Session.FileID,
		ConvertedFiles: links,
		Table:          res.Session.Table,
		Errors:         res.Session.Errors,
	}
}

// handleConvertedFile serves a first-pass conversion output.
func (s *Server) handleConvertedFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, format, err := s.files.ConvertedFile(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := serveFile(w, r, path, format, name); err != nil {
		s.respondError(w, r, err)
	}
}

// handleSaveEdits saves a client-supplied payload.
func (s *Server) handleSaveEdits(w http.ResponseWriter, r *http.Request) {
	var payload core.SavePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := payload.Check(); err != nil {
		s.respondError(w, r, badRequest(err.Error()))
		return
	}
	res, err := s.service.SaveEdits(requestContext(r), payload)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSaveResponse(res))
}

// handleSaveSession saves the live session.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Save(requestContext(r), fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSaveResponse(res))
}

func newSaveResponse(res *core.SaveResult) saveResponse {
	links := make(map[core.ExportFormat]string, len(res.Files))
	for f := range res.Files {
		links[f] = "/api/download/" + res.FileID + "/" + string(f)
	}
	return saveResponse{Success: true, FileID: res.FileID, Downloads: links}
}

// handleDownload serves a saved output as corrected_data.{format}.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileID := fileIDParam(r)
	format, err := core.ParseExportFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	path, err := s.service.CorrectedFile(fileID, format)
	if err == nil {
		err = store.CheckFile(path)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := serveFile(w, r, path, format, "corrected_data."+string(format)); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.service.MarkExported(fileID, format)
}
