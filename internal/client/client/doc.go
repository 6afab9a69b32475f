// Package client talks to the taskkeeper REST API and bootstraps the
// client's local SQLite database.
//
// HTTPClient attaches "Authorization: Bearer <token>" from a TokenSource to
// every protected call. Non-2xx answers come back as *APIError, which
// unwraps to ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict or
// ErrUnavailable so callers can use errors.Is. Transport failures are
// reported as ErrUnavailable.
package client
