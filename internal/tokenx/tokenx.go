// Package tokenx reads the claims of a bearer token without verifying it.
//
// This is display and expiry-check convenience for the client. The
// signature segment is never looked at here, so nothing decoded by this
// package may be trusted for authorization; only the server, holding the
// signing secret, verifies tokens (see internal/server/auth).
package tokenx

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a taskkeeper access token. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

var urlToStd = strings.NewReplacer("-", "+", "_", "/")

// Decode extracts the claims of token. The payload segment is mapped from the
// URL-safe alphabet to the standard one, unpadded, base64-decoded and parsed as
// JSON. Any failure (wrong segment count, bad base64, bad JSON, non-numeric
// or missing exp) yields ok == false. A payload of null or {} carries no exp
// and is rejected too.
func Decode(token string) (claims Claims, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return Claims{}, false
	}

	payload := strings.TrimRight(urlToStd.Replace(parts[1]), "=")
	raw, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil {
		return Claims{}, false
	}

	if err := json.Unmarshal(raw, &claims); err != nil || claims.ExpiresAt == nil {
		return Claims{}, false
	}
	return claims, true
}

// IsExpired reports whether token must be treated as expired at now.
// It fails closed: a token that does not decode, or carries no exp, is expired.
func IsExpired(token string, now time.Time) bool {
	claims, ok := Decode(token)
	if !ok {
		return true
	}
	return claims.ExpiresAt.Before(now)
}
