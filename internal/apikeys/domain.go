package apikeys

import "time"

// SecretPrefix distinguishes API keys from bearer tokens on the wire.
const SecretPrefix = "sk_"

// APIKey is a long-lived, revocable credential owned by one user. Key holds
// the secret and is only populated on the create response; listings carry
// metadata only.
type APIKey struct {
	ID         int64
	Name       string
	Key        string
	UserID     int64
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
