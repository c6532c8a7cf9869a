package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and code
//  4. The code picks the HTTP status
//  5. Technical error is logged with the request ID, user message is rendered

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/euring/internal/core"
	"github.com/JonMunkholm/euring/internal/logging"
	"github.com/JonMunkholm/euring/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	msgInvalidBody = core.UserMessage{
		Message: "The request body is not valid JSON",
		Action:  "Send a JSON object matching the endpoint's documented fields",
		Code:    "REQ001",
	}
	msgBodyTooLarge = core.UserMessage{
		Message: "The request body is too large",
		Action:  "Split the records into smaller requests",
		Code:    "REQ002",
	}
	msgRateLimited = core.UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// errInvalidBody marks request decoding failures.
var errInvalidBody = errors.New("invalid request body")

// userMessage maps err, including web-level decode failures.
func userMessage(err error) core.UserMessage {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return msgBodyTooLarge
	case errors.Is(err, errInvalidBody):
		return msgInvalidBody
	}
	return core.MapError(err)
}

// statusForCode returns the HTTP status for a user message code.
func statusForCode(code string) int {
	switch code {
	case "CNV001", "CAT001":
		return http.StatusNotFound
	case "BAT003":
		return http.StatusServiceUnavailable
	case "RATE001":
		return http.StatusTooManyRequests
	case "REQ002":
		return http.StatusRequestEntityTooLarge
	case "CAT003", "ERR000", "":
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// respondError logs the technical error server-side and returns a
// user-friendly response in the format the client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := userMessage(err)
	status := statusForCode(msg.Code)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
	} else {
		renderErrorPartial(w, r, msg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders the HTML error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Warn("render error partial", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}
