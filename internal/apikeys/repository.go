package apikeys

import (
	"context"
	"time"

	"github.com/boutique-shop/boutique-shop/internal/auth"
)

// Repository defines persistence operations for API keys.
type Repository interface {
	Insert(ctx context.Context, key *APIKey) error
	// FindBySecret returns the key row and its owning user.
	FindBySecret(ctx context.Context, secret string) (*APIKey, *auth.User, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]APIKey, error)
	// SetActive flips is_active on a key scoped to its owner.
	SetActive(ctx context.Context, ownerID, keyID int64, active bool) error
	DeleteOwned(ctx context.Context, ownerID, keyID int64) error
	TouchLastUsed(ctx context.Context, keyID int64, at time.Time) error
}
