package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares sessions between several BFF instances
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, id string) (string, error) {
	token, err := r.client.Get(ctx, r.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get session")
	}
	return token, nil
}

func (r *RedisStore) Set(ctx context.Context, id, token string, ttl time.Duration) error {
	return errors.Wrap(r.client.Set(ctx, r.prefix+id, token, ttl).Err(), "redis set session")
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(r.client.Del(ctx, r.prefix+id).Err(), "redis delete session")
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
