// Package session keeps the signed-in user's access token across client runs.
//
// The token lives in a single metadata slot (common.SessionTokenKey). Its
// claims are read with tokenx, without signature verification: they drive
// display and the local expiry check only. The server remains the authority
// on whether the token is valid.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/tokenx"
)

type Session struct {
	Token  string
	Claims tokenx.Claims
}

func (s *Session) UserID() string { return s.Claims.Subject }

// ExpiresAt is the zero time when the token carries no exp.
func (s *Session) ExpiresAt() time.Time {
	if s.Claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.Claims.ExpiresAt.Time
}

// DisplayName prefers the name claim and falls back to the email.
func (s *Session) DisplayName() string {
	if s.Claims.Name != "" {
		return s.Claims.Name
	}
	return s.Claims.Email
}

// Store owns the active session. It is safe for concurrent use so the HTTP
// client can read the token while the REPL replaces it.
type Store struct {
	mu      sync.RWMutex
	repo    metadata.Repository
	current *Session
	now     func() time.Time
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// Restore loads the persisted token. An absent, undecodable or expired token
// is removed and yields (nil, nil).
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	token := string(raw)
	if token == "" || tokenx.IsExpired(token, s.now()) {
		s.current = nil
		if raw != nil {
			if err := s.repo.Delete(ctx, common.SessionTokenKey); err != nil {
				return nil, fmt.Errorf("restore session: %w", err)
			}
		}
		return nil, nil
	}

	claims, ok := tokenx.Decode(token)
	if !ok {
		s.current = nil
		return nil, nil
	}

	s.current = &Session{Token: token, Claims: claims}
	return s.current, nil
}

// Login persists token and makes it the active session, replacing any
// previous one. A token whose claims cannot be read, or that is already
// expired, is refused and nothing is stored.
func (s *Store) Login(ctx context.Context, token string) (*Session, error) {
	claims, ok := tokenx.Decode(token)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if claims.ExpiresAt.Before(s.now()) {
		return nil, common.ErrTokenExpired
	}

	if err := s.repo.Set(ctx, common.SessionTokenKey, []byte(token)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.current = &Session{Token: token, Claims: claims}
	return s.current, nil
}

// Logout forgets the active session and clears the persisted slot. The
// in-memory session is dropped even if the slot cannot be cleared.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.repo.Delete(ctx, common.SessionTokenKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the active session's token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}
