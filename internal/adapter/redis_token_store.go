package adapter

import (
	"context"
	"crypto/subtle"
	"time"

	"quizdeck/internal/domain"

	"github.com/redis/go-redis/v9"
)

const resetTokenKeyPrefix = "pwreset:"

// RedisTokenStore implements domain.TokenStore on a Redis client. Tokens
// are single-use values with a TTL; this is a token store, not a cache —
// no quiz data ever lands here.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a new instance of RedisTokenStore. It expects
// a connected *redis.Client.
func NewRedisTokenStore(client *redis.Client) domain.TokenStore {
	return &RedisTokenStore{client: client}
}

// Save stores token under key with the given TTL, replacing any previous
// token for that key (re-requesting a reset invalidates the older link).
func (s *RedisTokenStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.client.Set(ctx, resetTokenKeyPrefix+key, token, ttl).Err()
}

// Consume verifies the stored token and deletes it in one pass so a link
// cannot be redeemed twice.
func (s *RedisTokenStore) Consume(ctx context.Context, key, token string) error {
	stored, err := s.client.GetDel(ctx, resetTokenKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.ErrTokenNotFound
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// Ping checks the health of the Redis server.
func (s *RedisTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
