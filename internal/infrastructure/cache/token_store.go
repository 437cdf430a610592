package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued access tokens. A token is live while its key exists.
type TokenStore interface {
	Save(ctx context.Context, subject, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, subject, tokenID string) (bool, error)
	Revoke(ctx context.Context, subject, tokenID string) error
}

type redisTokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func tokenKey(subject, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", subject, tokenID)
}

func (s *redisTokenStore) Save(ctx context.Context, subject, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(subject, tokenID), "1", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, subject, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(subject, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, subject, tokenID string) error {
	return s.client.Del(ctx, tokenKey(subject, tokenID)).Err()
}
