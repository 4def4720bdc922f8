package http

import (
	"errors"
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/workflow"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateID), errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server faults and sends the error to the client. Internal
// error text is never exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Something went wrong, please retry."
	}
	ErrorResponse(status, message).Write(w)
}

// sanitizeInput removes control characters other than tab, CR and LF and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
