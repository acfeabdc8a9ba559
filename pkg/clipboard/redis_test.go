package clipboard

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// redisAddr returns the test server address or skips the test.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("NODEFLOW_TEST_REDIS")
	if addr == "" {
		t.Skip("NODEFLOW_TEST_REDIS not set")
	}
	return addr
}

func TestRedisBackend(t *testing.T) {
	addr := redisAddr(t)
	ctx := context.Background()

	b, err := NewRedisBackend(ctx, RedisConfig{Addr: addr, Key: "nodeflow:test:" + t.Name(), TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	defer b.Clear(ctx)

	if err := b.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Read(ctx); !errors.Is(err, ErrEmpty) {
		t.Errorf("Read() on empty key = %v, want ErrEmpty", err)
	}

	if err := b.Write(ctx, []byte(`{"nodes":[]}`)); err != nil {
		t.Fatal(err)
	}
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"nodes":[]}` {
		t.Errorf("Read() = %s", got)
	}
}

func TestRedisBackendUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisBackend(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisBackend(unreachable) = %v, want ErrUnavailable", err)
	}
}
