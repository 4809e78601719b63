package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore counts failed login attempts per key within a fixed window.
// Abstracted from redis so the login flow is testable against a fake.
type AttemptStore interface {
	// Incr increments the counter for key, starting the window on the
	// first increment, and returns the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current counter for key, zero when absent.
	Count(ctx context.Context, key string) (int64, error)
	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}

type redisAttemptStore struct {
	client *redis.Client
	prefix string
}

// NewRedisAttemptStore creates an AttemptStore backed by redis
func NewRedisAttemptStore(client *redis.Client, prefix string) AttemptStore {
	return &redisAttemptStore{client: client, prefix: prefix}
}

func (s *redisAttemptStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *redisAttemptStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := s.key(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}

	// Fixed window: expiry is set once, on the first failure
	if count == 1 {
		s.client.Expire(ctx, k, window)
	}

	return count, nil
}

func (s *redisAttemptStore) Count(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Get(ctx, s.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return count, nil
}

func (s *redisAttemptStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempt counter: %w", err)
	}
	return nil
}
