package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps service errors to a status and a client-safe message.
// Anything unrecognised is logged and answered with a generic 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrMissingToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, tokenMessage(err))
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, common.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, "User already exists")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return common.ErrMissingToken.Error()
	case errors.Is(err, common.ErrTokenExpired):
		return common.ErrTokenExpired.Error()
	default:
		return common.ErrInvalidToken.Error()
	}
}

// decodeJSON reads exactly one JSON object from the body. Any failure is
// reported as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON", common.ErrValidation)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: extra data after JSON object", common.ErrValidation)
	}
	return nil
}
