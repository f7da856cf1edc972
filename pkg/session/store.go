package session

import (
	"context"
	"fmt"
	"time"

	"rent-admin/pkg/config"
	"rent-admin/pkg/database"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session id has no stored token
var ErrNotFound = errors.New("session: not found")

// Store keeps the gateway token of every admin session
type Store interface {
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, token string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open builds the store selected by cfg.Session.Store
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "bolt":
		return NewBoltStore(cfg.Session.BoltPath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "connect redis session store")
		}
		return NewRedisStore(client, "rent-admin:session:"), nil
	case "postgres":
		if err := database.InitDB(cfg, &Record{}); err != nil {
			return nil, err
		}
		return NewPostgresStore(database.GetDB()), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
