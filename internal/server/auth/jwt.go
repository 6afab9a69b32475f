// Package auth issues and verifies signed access tokens on the server.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/tokenx"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload signed into every access token.
type Claims = tokenx.Claims

// TokenSubject is the identity a token is issued for.
type TokenSubject struct {
	ID    string
	Name  string
	Email string
}

// GenerateToken issues an HS256 token for user that expires after validity.
func GenerateToken(user TokenSubject, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	return SignClaims(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Name:  user.Name,
		Email: user.Email,
	}, secretKey)
}

// SignClaims signs arbitrary claims with HS256.
func SignClaims(claims Claims, secretKey []byte) (string, error) {
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies signature, algorithm and expiry of tokenString.
// It returns common.ErrTokenExpired for an otherwise valid but expired token
// and common.ErrInvalidToken for everything else.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value. Both
// "<token>" and "Bearer <token>" (scheme matched case-insensitively) are
// accepted. An empty result yields common.ErrMissingToken.
func BearerToken(headerValue string) (string, error) {
	v := strings.TrimSpace(headerValue)

	scheme, rest, found := strings.Cut(v, " ")
	switch {
	case found && strings.EqualFold(scheme, common.BearerScheme):
		v = strings.TrimSpace(rest)
	case !found && strings.EqualFold(v, common.BearerScheme):
		v = ""
	}

	if v == "" {
		return "", common.ErrMissingToken
	}
	return v, nil
}
