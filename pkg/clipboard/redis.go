package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when RedisConfig.Key is empty.
const DefaultRedisKey = "nodeflow:clipboard"

// RedisConfig configures a Redis clipboard.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Key holds the clipboard bytes. Editors sharing a key share a clipboard.
	Key string

	// TTL expires the clipboard content; 0 keeps it until overwritten.
	TTL time.Duration

	// DialAttempts and RetryDelay control how often the initial ping is
	// retried. Zero values use the defaults.
	DialAttempts int
	RetryDelay   time.Duration
}

// RedisBackend stores the clipboard under one Redis key, shared by every
// editor instance pointed at the same server and key.
type RedisBackend struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	owned  bool
}

// NewRedisBackend connects to Redis and verifies the connection, retrying
// the ping with backoff.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	attempts, delay := cfg.DialAttempts, cfg.RetryDelay
	if attempts <= 0 {
		attempts = DefaultDialAttempts
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	err := retry(ctx, attempts, delay, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	b := NewRedisBackendFromClient(client, cfg.Key, cfg.TTL)
	b.owned = true
	return b, nil
}

// NewRedisBackendFromClient uses an existing client. Close does not close
// a client passed in this way.
func NewRedisBackendFromClient(client *redis.Client, key string, ttl time.Duration) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key, ttl: ttl}
}

// Key returns the Redis key holding the clipboard.
func (r *RedisBackend) Key() string { return r.key }

// Write stores data under the clipboard key.
func (r *RedisBackend) Write(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrUnavailable, err)
	}
	return nil
}

// Read returns the bytes under the clipboard key, or ErrEmpty.
func (r *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Clear deletes the clipboard key.
func (r *RedisBackend) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrUnavailable, err)
	}
	return nil
}

// Close closes the client if the backend created it.
func (r *RedisBackend) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}

// Ensure RedisBackend implements Backend.
var _ Backend = (*RedisBackend)(nil)
