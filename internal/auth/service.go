package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// RateLimitedError reports a rejected login attempt and how long the caller
// must wait before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

// Service wraps authentication business rules.
type Service struct {
	logger     *slog.Logger
	repo       Repository
	tokens     *TokenIssuer
	limiter    *LoginLimiter
	bcryptCost int
	now        func() time.Time
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, repo Repository, tokens *TokenIssuer, limiter *LoginLimiter, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		logger:     logger,
		repo:       repo,
		tokens:     tokens,
		limiter:    limiter,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Login validates email/password credentials behind the per-email cooldown
// and issues a session token. Password hashing and verification happen
// outside any lock.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if !s.limiter.CanAttempt(email) {
		return "", &RateLimitedError{RetryAfter: s.limiter.TimeUntilNext(email)}
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("login: user lookup", slog.Any("error", err))
		}
		return "", shared.ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Register creates a new user with the default role.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       DefaultRoleID,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword re-hashes and stores the new password, advancing
// password_updated_at so every outstanding token is superseded.
func (s *Service) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash, s.now().UTC())
}

// Logout invalidates all outstanding tokens for the user. Tokens are not
// individually revocable, so logout bumps the password-change watermark.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.repo.TouchPasswordUpdatedAt(ctx, userID, s.now().UTC())
}
