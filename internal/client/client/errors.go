package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/netx"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// APIError is a non-2xx answer from the server. It unwraps to one of the
// sentinels above when the status has a meaning for the caller.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		return &APIError{StatusCode: se.StatusCode, Message: se.Message, kind: kindOf(se.StatusCode)}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	// transport failures: refused, DNS, timeouts
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func kindOf(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}
