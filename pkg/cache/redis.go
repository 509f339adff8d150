// Package cache owns the process-wide Redis connection. Sessions and the
// Redis shell cache store both share it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PoolOptions are the connection pool settings applied on top of the URL.
type PoolOptions struct {
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// DefaultPoolOptions suits a single api or worker process.
var DefaultPoolOptions = PoolOptions{
	PoolSize:     10,
	MinIdleConns: 2,
	MaxRetries:   3,
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolTimeout:  4 * time.Second,
}

// RedisClient wraps redis.Client.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient parses url, applies DefaultPoolOptions and verifies
// connectivity with a 2s ping.
func NewRedisClient(ctx context.Context, url string) (*RedisClient, error) {
	return NewRedisClientWithOptions(ctx, url, DefaultPoolOptions)
}

// NewRedisClientWithOptions is NewRedisClient with explicit pool settings.
func NewRedisClientWithOptions(ctx context.Context, url string, pool PoolOptions) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.PoolSize = pool.PoolSize
	opts.MinIdleConns = pool.MinIdleConns
	opts.MaxRetries = pool.MaxRetries
	opts.DialTimeout = pool.DialTimeout
	opts.ReadTimeout = pool.ReadTimeout
	opts.WriteTimeout = pool.WriteTimeout
	opts.PoolTimeout = pool.PoolTimeout

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool. Safe on a zero RedisClient.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
