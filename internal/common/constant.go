// Package common contains shared constants and sentinel errors used across
// taskkeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the optional scheme prefix in front of the access token.
// The server accepts the token with or without it; the client always sends it.
const BearerScheme = "Bearer"

// SessionTokenKey is the key of the single client-side persisted slot
// holding the current access token.
const SessionTokenKey = "token"

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)
