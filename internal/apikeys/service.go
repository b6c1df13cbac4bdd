package apikeys

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/shared"
)

const secretBytes = 32

// Service provides API key operations. It implements auth.KeyResolver.
type Service struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// Generate creates a new active key for the owner. The returned APIKey is
// the only place the plaintext secret ever appears; it is not recoverable
// afterwards.
func (s *Service) Generate(ctx context.Context, ownerID int64, name string) (*APIKey, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("apikeys: generate secret: %w", err)
	}
	if name == "" {
		name = "API key"
	}

	key := &APIKey{
		Name:     name,
		Key:      SecretPrefix + hex.EncodeToString(raw),
		UserID:   ownerID,
		IsActive: true,
	}
	if err := s.repo.Insert(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Resolve looks up a presented secret and returns the owning user. Absent
// or deactivated keys fail with shared.ErrInvalidCredentials. A successful
// resolution touches last_used_at as an observable side effect.
func (s *Service) Resolve(ctx context.Context, secret string) (*auth.User, error) {
	key, user, err := s.repo.FindBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !key.IsActive {
		return nil, shared.ErrInvalidCredentials
	}

	if err := s.repo.TouchLastUsed(ctx, key.ID, s.now().UTC()); err != nil {
		s.logger.Warn("apikeys: touch last used", slog.Any("error", err))
	}
	return user, nil
}

// List returns the owner's keys with the secret column blanked.
func (s *Service) List(ctx context.Context, ownerID int64) ([]APIKey, error) {
	keys, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		keys[i].Key = ""
	}
	return keys, nil
}

// Deactivate disables a key without deleting it. A key owned by another
// user is reported as not found, never as a different error.
func (s *Service) Deactivate(ctx context.Context, ownerID, keyID int64) error {
	return s.repo.SetActive(ctx, ownerID, keyID, false)
}

// Reactivate re-enables a previously deactivated key.
func (s *Service) Reactivate(ctx context.Context, ownerID, keyID int64) error {
	return s.repo.SetActive(ctx, ownerID, keyID, true)
}

// Delete removes a key permanently, scoped to its owner.
func (s *Service) Delete(ctx context.Context, ownerID, keyID int64) error {
	return s.repo.DeleteOwned(ctx, ownerID, keyID)
}

var _ auth.KeyResolver = (*Service)(nil)
