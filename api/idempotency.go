package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records processed idempotency tokens so a retried mutation is
// rejected instead of applied twice.
type Deduper interface {
	Add(ctx context.Context, userID, key string) (bool, error)
	Remove(ctx context.Context, userID, key string) error
}

const idempotencyKeyPrefix = "idem:"

// tokenKey scopes a token to its user: the same client-generated value
// from two different users is two distinct tokens.
func tokenKey(userID, key string) string {
	return idempotencyKeyPrefix + userID + ":" + key
}

// RedisDeduper stores processed idempotency tokens in Redis so every
// instance sees the same set. Entries expire after the TTL; a retry
// arriving later than that is treated as a fresh mutation.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and
// TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: client, ttl: ttl}
}

// Add claims the token. It returns true when the token was unseen; the
// stored value is the claim time, useful when inspecting stuck retries
// by hand.
func (r *RedisDeduper) Add(ctx context.Context, userID, key string) (bool, error) {
	claimedAt := time.Now().UTC().Format(time.RFC3339Nano)
	return r.rdb.SetNX(ctx, tokenKey(userID, key), claimedAt, r.ttl).Result()
}

// Remove releases a claimed token. Called when the mutation behind it
// failed, so the user's manual retry is not rejected as a duplicate.
func (r *RedisDeduper) Remove(ctx context.Context, userID, key string) error {
	return r.rdb.Del(ctx, tokenKey(userID, key)).Err()
}
