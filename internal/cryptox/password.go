// Package cryptox hashes and verifies user passwords with bcrypt.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by ComparePassword when the password does
// not match the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// DefaultCost is the bcrypt cost used by the server.
const DefaultCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password. cost outside bcrypt's
// accepted range falls back to DefaultCost.
func HashPassword(password []byte, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ComparePassword checks password against a hash produced by HashPassword.
// A wrong password yields ErrPasswordMismatch; a malformed hash yields the
// underlying bcrypt error.
func ComparePassword(hash string, password []byte) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// dummyHash is compared against when the user does not exist, so a login
// for an unknown email costs the same bcrypt round as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskkeeper-dummy"), DefaultCost)

// CompareDummy burns one bcrypt comparison and always returns ErrPasswordMismatch.
func CompareDummy(password []byte) error {
	_ = bcrypt.CompareHashAndPassword(dummyHash, password)
	return ErrPasswordMismatch
}
