// Package services contains the client's application services. They sit
// between the REPL and the HTTP client and own the session lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Restore: resume a persisted, unexpired session, if any.
//   - Register: create an account; does not sign in.
//   - Login: obtain a token and make it the active session.
//   - Logout: tell the server, then always forget the local session.
//   - DropSession: forget the local session only (server rejected it).
//   - Ping: check server liveness.
type AuthService interface {
	Restore(ctx context.Context) (*session.Session, error)
	Current() *session.Session
	Register(ctx context.Context, name, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*session.Session, error)
	Logout(ctx context.Context) error
	DropSession(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client            client.Client
	store             *session.Store
	passwordMaxLength int
}

func NewAuthService(c client.Client, store *session.Store, passwordMaxLength int) AuthService {
	return &authService{client: c, store: store, passwordMaxLength: passwordMaxLength}
}

func (a *authService) Restore(ctx context.Context) (*session.Session, error) {
	return a.store.Restore(ctx)
}

func (a *authService) Current() *session.Session {
	return a.store.Current()
}

// Register checks the password against the same length policy as the
// server before sending anything.
func (a *authService) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	if err := a.checkPassword(password); err != nil {
		return nil, err
	}

	u, err := a.client.Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), string(password))
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

func (a *authService) checkPassword(password []byte) error {
	n := utf8.RuneCount(password)
	if n == 0 {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if a.passwordMaxLength > 0 && n > a.passwordMaxLength {
		return fmt.Errorf("%w: password must be at most %d characters", common.ErrValidation, a.passwordMaxLength)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*session.Session, error) {
	res, err := a.client.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s, err := a.store.Login(ctx, res.Token)
	if err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}
	return s, nil
}

// Logout ends the session locally even when the server cannot be told.
// Unauthorized and unavailable answers are expected here and not reported.
func (a *authService) Logout(ctx context.Context) error {
	serverErr := a.client.Logout(ctx)

	if err := a.store.Logout(ctx); err != nil {
		return err
	}

	if serverErr != nil && !errors.Is(serverErr, client.ErrUnauthorized) && !errors.Is(serverErr, client.ErrUnavailable) {
		return fmt.Errorf("logout error: %w", serverErr)
	}
	return nil
}

func (a *authService) DropSession(ctx context.Context) error {
	return a.store.Logout(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
