// Package models holds the server-side domain records persisted in PostgreSQL.
package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
