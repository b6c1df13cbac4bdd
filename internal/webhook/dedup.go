package webhook

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupKeyPrefix namespaces delivery ids in redis.
const dedupKeyPrefix = "webhook:delivery:"

// DefaultDedupTTL bounds how long a delivery id is remembered. Shopify
// stops retrying a delivery well within a day.
const DefaultDedupTTL = 24 * time.Hour

// Deduper remembers webhook delivery ids so retried deliveries are
// acknowledged without being enqueued again.
type Deduper interface {
	Seen(ctx context.Context, deliveryID string) (bool, error)
}

// RedisDeduper implements Deduper on a shared redis instance; the dedup
// window holds across replicas and restarts, unlike the per-queue task id.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper constructs a RedisDeduper. A zero ttl falls back to
// DefaultDedupTTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// Seen records the delivery id and reports whether it was already present.
func (d *RedisDeduper) Seen(ctx context.Context, deliveryID string) (bool, error) {
	stored, err := d.client.SetNX(ctx, dedupKeyPrefix+deliveryID, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !stored, nil
}

var _ Deduper = (*RedisDeduper)(nil)
