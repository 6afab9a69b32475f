// Package common defines shared constants and sentinel errors used across
// client and server layers of taskkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation wraps every input validation failure; details follow the
	// colon, e.g. "validation error: password: the length must be ...".
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
