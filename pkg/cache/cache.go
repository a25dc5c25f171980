// Package cache stores encoded calculation results so repeated requests with
// identical inputs skip the engines.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is a byte-oriented result store safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key derives a cache key from a result kind and the canonical encoding of
// the request that produced it.
func Key(kind string, payload []byte) string {
	return "fincalc:" + kind + ":" + strconv.FormatUint(xxhash.Sum64(payload), 16)
}

// MemoryCache keeps results in process memory.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached value for key, if present and unexpired.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if cached, found := m.items.Get(key); found {
		return cached.([]byte), true, nil
	}
	return nil, false, nil
}

// Set stores value under key with the cache TTL.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, value, gocache.DefaultExpiration)
	return nil
}

// Len returns the number of unexpired entries.
func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}

// Close drops every entry.
func (m *MemoryCache) Close() error {
	m.items.Flush()
	return nil
}

// RedisCache shares results between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects lazily to the Redis server at addr.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	return &RedisCache{client: client, ttl: ttl}
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get fetches key from Redis. A missing key is a miss, not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes value under key with the cache TTL.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the client connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
