package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request id, then
// mapped with core.MapError to a stable code and a user-facing message. The
// JSON body keeps the short per-route summary in "error" so existing clients
// that only read that field keep working.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/JonMunkholm/workerdesk/internal/logging"
)

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidID   = errors.New("invalid worker id")
	errRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a JSON error body. summary is the short
// route-specific description, e.g. "Failed to add worker".
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int, summary string) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	respondErrorJSON(w, userMsg, statusCode, summary)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int, summary string) {
	if summary == "" {
		summary = msg.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   summary,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondText writes a plain-text body, for clients that asked for one.
func respondText(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(text))
}

// wantsPlainText reports whether the client prefers text/plain over JSON.
func wantsPlainText(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidID),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrNoValidRows):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrWorkerNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		// Parse, insert and storage failures.
		return http.StatusInternalServerError
	}
}
