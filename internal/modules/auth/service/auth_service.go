package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"lectern/internal/modules/auth/domain"
	authout "lectern/internal/modules/auth/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logging"
)

const fallbackTokenTTL = time.Hour

type AuthService struct {
	clock   clock.Clock
	gateway authout.Gateway
	tokens  authout.TokenStore
	expiry  authout.ExpiryReader
	logger  *log.Logger
}

func NewAuthService(clock clock.Clock, gateway authout.Gateway, tokens authout.TokenStore, expiry authout.ExpiryReader, logger *log.Logger) *AuthService {
	return &AuthService{clock: clock, gateway: gateway, tokens: tokens, expiry: expiry, logger: logging.OrDiscard(logger)}
}

func (s *AuthService) Login(ctx context.Context, credentials domain.Credentials) (domain.Token, error) {
	if err := credentials.Validate(); err != nil {
		return domain.Token{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	grant, err := s.gateway.Login(ctx, credentials)
	if err != nil {
		return domain.Token{}, err
	}
	if grant.AccessToken == "" {
		return domain.Token{}, fmt.Errorf("login response carried no access token")
	}
	token := domain.Token{
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		ExpiresAt:   s.expiresAt(grant),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return domain.Token{}, err
	}
	s.logger.Info("logged in", "expires_at", token.ExpiresAt)
	return token, nil
}

func (s *AuthService) expiresAt(grant domain.Grant) time.Time {
	now := s.clock.Now()
	if grant.ExpiresIn > 0 {
		return now.Add(grant.ExpiresIn)
	}
	if s.expiry != nil {
		if exp, ok := s.expiry.Expiry(grant.AccessToken); ok {
			return exp
		}
	}
	s.logger.Warn("token carries no expiry, assuming default ttl", "ttl", fallbackTokenTTL)
	return now.Add(fallbackTokenTTL)
}

func (s *AuthService) Register(ctx context.Context, registration domain.Registration) (domain.User, error) {
	if err := registration.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.gateway.Register(ctx, registration)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// Session returns the stored token if it is still valid. An expired token is
// removed from the store.
func (s *AuthService) Session(ctx context.Context) (domain.Token, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Token{}, apperrors.ErrNotAuthenticated
		}
		return domain.Token{}, err
	}
	if !token.Valid(s.clock.Now()) {
		if err := s.tokens.Clear(ctx); err != nil {
			s.logger.Warn("clear expired token", "err", err)
		} else {
			s.logger.Info("stored session expired, logged out", "expired_at", token.ExpiresAt)
		}
		return domain.Token{}, apperrors.ErrNotAuthenticated
	}
	return token, nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	if _, err := s.Session(ctx); err != nil {
		return domain.User{}, err
	}
	return s.gateway.CurrentUser(ctx)
}

// Invalidate drops the stored token after the backend rejected it.
func (s *AuthService) Invalidate(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("clear rejected token", "err", err)
		return
	}
	s.logger.Info("session rejected by backend, logged out")
}
