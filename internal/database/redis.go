package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
)

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// A URL wins over the discrete settings.
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse Redis URL")
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}
	return client, nil
}

// NewOptionalRedis returns nil instead of failing when Redis is not
// reachable outside production. Token revocation and rate limiting are
// disabled in that case.
func NewOptionalRedis(cfg *config.Config, log *zap.SugaredLogger) (*redis.Client, error) {
	client, err := NewRedisClient(cfg)
	if err == nil {
		log.Infow("connected to redis", "addr", client.Options().Addr)
		return client, nil
	}
	if cfg.Environment.RequiresSecrets() {
		return nil, err
	}
	log.Warnw("redis unavailable, continuing without token revocation and rate limiting", "error", err)
	return nil, nil
}
