package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/run-o/talehopper/internal/config"
)

// RedisStore backs the per-IP rate limits so they hold across
// replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

// AllowRate reports whether another request is allowed under a sliding
// window of limit requests per window for the given key. Each request
// is a member of a sorted set scored by its timestamp; members outside
// the window are discarded before counting.
func (s *RedisStore) AllowRate(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count rate window: %w", err)
	}

	if countCmd.Val() >= int64(limit) {
		return false, nil
	}

	pipe = s.client.Pipeline()
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return true, nil
}
