package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService authenticates users and issues access tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
	clock  func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger, clock: time.Now}
}

// Login verifies credentials and returns a signed access token with the
// authenticated user. Wrong email and wrong password are deliberately
// indistinguishable to callers.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, errorutil.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errorutil.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return "", nil, errorutil.NewForbidden("account is deactivated")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, errorutil.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user, s.clock())
	if err != nil {
		return "", nil, errorutil.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return token, user, nil
}

// Refresh issues a fresh token for an already-authenticated user,
// extending the session without a second credential exchange.
func (s *AuthService) Refresh(user *domain.User) (string, error) {
	if user == nil {
		return "", errorutil.NewUnauthorized("authentication required")
	}
	token, err := s.tokens.Issue(user, s.clock())
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}
	return token, nil
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
