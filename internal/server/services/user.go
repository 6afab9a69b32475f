// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ErrInvalidCredentials is returned by Login for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields, email format and the password length cap.
func (r RegisterInput) Validate(passwordMaxLength int) error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.RuneLength(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(1, passwordMaxLength)),
	)
	return asValidationError(err)
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	passwordMaxLength           int
	bcryptCost                  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		passwordMaxLength:           cfg.PasswordMaxLength,
		bcryptCost:                  cryptox.DefaultCost,
	}
}

// Register validates in, hashes the password and stores a new user.
// A taken email yields common.ErrAlreadyExists. No token is issued.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := in.Validate(s.passwordMaxLength); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = cryptox.CompareDummy([]byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if err := cryptox.ComparePassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.TokenSubject{ID: user.ID, Name: user.Name, Email: user.Email},
		s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Logout is declarative: tokens are stateless, so the client discarding its
// copy is the whole protocol. userID must come from a verified token.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// asValidationError converts ozzo errors into common.ErrValidation wraps.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", common.ErrValidation, verrs.Error())
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
}
