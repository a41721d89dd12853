package web

import (
	"net/http"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/go-chi/chi/v5"
)

type cellRequest struct {
	RowID     string `json:"rowId"`
	ColumnKey string `json:"columnKey"`
	Value     string `json:"value"`
}

type statusRequest struct {
	RowID     string `json:"rowId"`
	ColumnKey string `json:"columnKey"`
	Status    string `json:"status"`
}

// respondSnapshot writes a session snapshot or the error that prevented it.
func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, snap core.Snapshot, err error) {
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Get(fileIDParam(r))
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(requestContext(r), fileIDParam(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.EditCell(requestContext(r), fileIDParam(r), req.RowID, req.ColumnKey, req.Value)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	status, err := core.ParseCellStatus(req.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.SetCellStatus(requestContext(r), fileIDParam(r), req.RowID, req.ColumnKey, status)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Undo(requestContext(r), fileIDParam(r))
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Redo(requestContext(r), fileIDParam(r))
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	errs, err := s.service.Validate(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Get(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rules := snap.Rules
	if rules == nil {
		rules = core.Rules{}
	}
	writeJSON(w, http.StatusOK, rules)
}

// handlePutRules replaces the rules with a JSON body. It is parsed as
// strictly as an imported rules file.
func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	s.importRules(w, r)
}

func (s *Server) handleImportRules(w http.ResponseWriter, r *http.Request) {
	s.importRules(w, r)
}

func (s *Server) importRules(w http.ResponseWriter, r *http.Request) {
	data, err := s.requestDocument(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ImportRules(requestContext(r), fileIDParam(r), data)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleExportRules(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportRules(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeAttachment(w, "validation_rules.json", data)
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ApplyPreset(requestContext(r), fileIDParam(r), chi.URLParam(r, "name"))
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportReport(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeAttachment(w, "validation_report.json", data)
}

func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.requestDocument(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := s.service.ImportReport(requestContext(r), fileIDParam(r), data)
	s.respondSnapshot(w, r, snap, err)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Diff(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
