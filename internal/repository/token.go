package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("token not found")

// AccessToken is the value stored per issued token. ExpiresAt duplicates the
// Redis TTL so validation can re-check expiry lazily even if a store without
// native expiry backs this interface.
type AccessToken struct {
	DisplayID string    `json:"display_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore is the expiry-aware key-value abstraction behind the access
// token service.
type TokenStore interface {
	Put(ctx context.Context, token string, value AccessToken, ttl time.Duration) error
	Get(ctx context.Context, token string) (AccessToken, error)
	Delete(ctx context.Context, token string) error
}

// RedisTokenStore keeps issued tokens in Redis under a "token:" prefix,
// letting Redis TTL do the expiry sweep.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "token:",
	}
}

func (s *RedisTokenStore) Put(ctx context.Context, token string, value AccessToken, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	return s.client.Set(ctx, s.prefix+token, data, ttl).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, token string) (AccessToken, error) {
	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return AccessToken{}, ErrTokenNotFound
		}

		return AccessToken{}, err
	}

	var value AccessToken
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return AccessToken{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return value, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.prefix+token).Err()
}
