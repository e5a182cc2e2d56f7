package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/logger"
	"github.com/acadvisor/acadvisor/internal/pkg/metrics"
)

// RedisDB wraps a Redis client. The advisor keeps no state between requests;
// Redis only holds rate limit windows.
type RedisDB struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        20,
		MinIdleConns:    2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return &RedisDB{Client: client}, nil
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.Client != nil {
		return db.Client.Close()
	}
	return nil
}

// Ping checks connectivity
func (db *RedisDB) Ping(ctx context.Context) error {
	if db.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return db.Client.Ping(ctx).Err()
}

// WindowResult is the outcome of one sliding window check
type WindowResult struct {
	Allowed   bool
	Count     int64
	Remaining int64
	ResetAt   time.Time
}

// SlidingWindow counts the request identified by key against a sliding window
// kept in a sorted set. Rejected requests are not recorded.
func (db *RedisDB) SlidingWindow(ctx context.Context, key string, limit int64, window time.Duration) (WindowResult, error) {
	start := time.Now()
	now := start.UnixMilli()
	windowStart := now - window.Milliseconds()
	resetAt := start.Add(window)

	pipe := db.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreOp("redis", "window_read", 0, err)
		return WindowResult{}, fmt.Errorf("failed to read rate limit window: %w", err)
	}

	count := card.Val()
	if count >= limit {
		metrics.RecordStoreOp("redis", "window_read", time.Since(start), nil)
		return WindowResult{Allowed: false, Count: count, Remaining: 0, ResetAt: resetAt}, nil
	}

	pipe = db.Client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d:%s", now, uuid.NewString()),
	})
	pipe.PExpire(ctx, key, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreOp("redis", "window_add", 0, err)
		return WindowResult{}, fmt.Errorf("failed to record request: %w", err)
	}
	metrics.RecordStoreOp("redis", "window_add", time.Since(start), nil)

	return WindowResult{
		Allowed:   true,
		Count:     count + 1,
		Remaining: limit - count - 1,
		ResetAt:   resetAt,
	}, nil
}
