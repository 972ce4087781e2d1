package web

// errors.go turns errors into JSON responses.
//
// The technical error is logged with the request id; the client receives the
// mapped message and code from core.MapError.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/conform/internal/core"
	"github.com/JonMunkholm/conform/internal/logging"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a setup error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, core.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoBronzeLoader):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its mapped message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if status == http.StatusConflict {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
