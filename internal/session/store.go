// Package session provides cookie-backed server-side login sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys so Reset does not touch cache entries
// sharing the same Redis database.
const keyPrefix = "sess:"

// RedisStorage adapts a go-redis client to fiber's Storage interface.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps client as a session storage backend.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// Get returns the value for key, or nil when the key does not exist.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores the value under key with the given expiration.
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(context.Background(), keyPrefix+key, val, exp).Err()
}

// Delete removes key. Missing keys are not an error.
func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), keyPrefix+key).Err()
}

// Reset removes all session keys.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the underlying client is owned by the caller.
func (s *RedisStorage) Close() error {
	return nil
}
