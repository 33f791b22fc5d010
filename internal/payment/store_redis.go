package payment

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "payment:event:"

// RedisIdempotencyStore is the production IdempotencyStore. SET NX gives the
// atomic first-writer-wins claim across all instances; the TTL expires keys
// long after the provider stops retrying.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) Claim(ctx context.Context, eventID string) (bool, error) {
	claimed, err := s.client.SetNX(ctx, idempotencyKeyPrefix+eventID, "1", idempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return claimed, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}
