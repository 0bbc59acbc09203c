package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
)

// RedisColumnLayoutRepository keeps serialised column layouts in Redis strings.
type RedisColumnLayoutRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisColumnLayoutRepository constructs the repository. A zero ttl keeps layouts indefinitely.
func NewRedisColumnLayoutRepository(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisColumnLayoutRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisColumnLayoutRepository{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns the raw payload stored under key.
func (r *RedisColumnLayoutRepository) Get(ctx context.Context, key string) (string, error) {
	if r.client == nil {
		return "", appErrors.ErrLayoutNotFound
	}

	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrLayoutNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set overwrites the payload stored under key.
func (r *RedisColumnLayoutRepository) Set(ctx context.Context, key, raw string) error {
	if r.client == nil {
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("column layout stored", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisColumnLayoutRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Ping checks the Redis connection.
func (r *RedisColumnLayoutRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}
