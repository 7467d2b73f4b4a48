package server

import (
	"encoding/json"
	"net/http"
	"strings"

	kamierrors "github.com/chrsmith/kami2-solver/pkg/errors"
)

// errorPayload is the wire shape of every error response.
type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v with the given status. Encoding failures have no
// recovery path once the header is out, so they are ignored.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a structured error payload with the HTTP status
// derived from the error code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := kamierrors.GetCode(err)
	if code == "" {
		code = kamierrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	// Keep the cause chain in the message but drop the code prefix,
	// which already travels in its own field.
	msg := err.Error()
	msg = strings.TrimPrefix(msg, string(code)+": ")

	respondJSON(w, status, errorPayload{Error: errorDetail{
		Code:    string(code),
		Message: msg,
	}})
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code kamierrors.Code) int {
	switch code {
	case kamierrors.ErrCodeNotFound, kamierrors.ErrCodeFileNotFound, kamierrors.ErrCodeJobNotFound:
		return http.StatusNotFound
	case kamierrors.ErrCodeInternal:
		return http.StatusInternalServerError
	case kamierrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// coded returns err unchanged when it already carries a code, wrapping it
// with the fallback code otherwise.
func coded(err error, fallback kamierrors.Code, msg string) error {
	if kamierrors.GetCode(err) != "" {
		return err
	}
	return kamierrors.Wrap(fallback, err, "%s", msg)
}
