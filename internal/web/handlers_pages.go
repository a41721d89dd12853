package web

import (
	"net/http"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/web/templates"
)

// handleLanding renders the upload page.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var groups []templates.PresetGroup
	for _, g := range core.Groups() {
		groups = append(groups, templates.PresetGroup{Name: g, Presets: core.ByGroup(g)})
	}
	maxMB := s.cfg.Upload.MaxFileSize >> 20
	if err := templates.Landing(groups, maxMB).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// handleReviewUpload converts a form upload and redirects to its grid.
func (s *Server) handleReviewUpload(w http.ResponseWriter, r *http.Request) {
	res, err := s.convertUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/review/"+res.Session.FileID, http.StatusSeeOther)
}

// handleReviewPage renders the grid for a live session.
func (s *Server) handleReviewPage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Get(fileIDParam(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Review(snap).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

type presetInfo struct {
	Name        string     `json:"name"`
	Group       string     `json:"group"`
	Description string     `json:"description"`
	Rules       core.Rules `json:"rules"`
}

// handleListPresets lists the registered rule presets.
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets := core.All()
	out := make([]presetInfo, len(presets))
	for i, p := range presets {
		rules := p.Rules
		if rules == nil {
			rules = core.Rules{}
		}
		out[i] = presetInfo{Name: p.Name, Group: p.Group, Description: p.Description, Rules: rules}
	}
	writeJSON(w, http.StatusOK, out)
}
