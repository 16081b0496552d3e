package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session table in Redis so revocations survive a
// process restart. Entries expire on their own via key TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(subject string) string {
	return "session:" + subject
}

func (s *RedisStore) Activate(ctx context.Context, subject string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(subject), "1", ttl).Err(); err != nil {
		return fmt.Errorf("activate session %s: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, subject string) error {
	if err := s.client.Del(ctx, sessionKey(subject)).Err(); err != nil {
		return fmt.Errorf("revoke session %s: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) Active(ctx context.Context, subject string) (bool, error) {
	err := s.client.Get(ctx, sessionKey(subject)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session %s: %w", subject, err)
	}
	return true, nil
}

// Ping reports whether the Redis backend is reachable, for readiness checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
