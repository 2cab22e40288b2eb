package service

import (
	"context"
	"errors"
	"strings"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthTokens is returned by a successful login or refresh.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         domain.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	RefreshToken(ctx context.Context, refresh string) (*AuthTokens, error)
}

type authService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewAuthService(store repository.Store, tokens security.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	ok, err := security.CheckPassword(user.PasswordHash, password)
	if err != nil {
		logger.WarnContext(ctx, "Stored password hash is unusable", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (*AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return nil, err
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, security.ErrWrongTokenType
	}
	// The role is reloaded so a demoted librarian loses desk access on refresh.
	var user *domain.User
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, claims.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, security.ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (*AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthTokens{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}
