package web

// errors.go turns service errors into responses. Technical details are
// logged with the request ID; clients get the mapped user message in the
// format they asked for (HTMX fragment, JSON or plain text).

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/logging"
	"github.com/JonMunkholm/tallyreview/internal/store"
	"github.com/JonMunkholm/tallyreview/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrRowNotFound),
		errors.Is(err, core.ErrColumnNotFound),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrPresetNotFound),
		errors.Is(err, store.ErrUploadNotFound),
		errors.Is(err, store.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrIDNotEditable),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrInvalidFileID),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNothingToUndo),
		errors.Is(err, core.ErrNothingToRedo):
		return http.StatusConflict
	case core.IsImportError(err),
		errors.Is(err, core.ErrNoTables):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errBadRequest marks malformed requests that never reach the service.
var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &requestError{msg: "invalid request: " + msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := core.MapError(err).Code

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
	}
	// Unmapped errors reach the user as ERR000 and need the log to diagnose.
	if status >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeError(w, r, status, err)
}

// respondMessage writes a plain message that did not come from an error,
// such as a rate limit rejection.
func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeError(w, r, status, errors.New(message))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := core.MapError(err)
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, core.FormatUserError(err), status)
	}
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode failed", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
