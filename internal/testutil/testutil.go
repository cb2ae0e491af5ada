//go:build integration

// Package testutil provides helpers for integration tests against a live
// Redis server.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultRedisAddr = "127.0.0.1:6379"

// RedisAddr returns the address of the test Redis server. It reads
// ASTOPO_TEST_REDIS and falls back to the local default port.
func RedisAddr() string {
	if addr := os.Getenv("ASTOPO_TEST_REDIS"); addr != "" {
		return addr
	}
	return defaultRedisAddr
}

// SkipIfNoRedis skips the test if the test Redis server is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
