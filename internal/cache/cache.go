// Package cache stores conversion results between requests.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces conversion results in a shared store
const KeyPrefix = "markbridge:convert:"

// ErrMiss is returned by Get when no entry exists or it has expired
var ErrMiss = errors.New("cache miss")

// Entry is one cached conversion
type Entry struct {
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
}

type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// Key identifies a conversion of input between two formats
func Key(from, to string, input []byte) string {
	h := sha256.New()
	h.Write([]byte(from))
	h.Write([]byte{0})
	h.Write([]byte(to))
	h.Write([]byte{0})
	h.Write(input)
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily to the Redis server at addr
func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	return NewRedisCacheFromClient(rdb)
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the entry stored under key, or ErrMiss
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	jsonData, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(jsonData), &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cache entry json: %w", err)
	}

	return &entry, nil
}

// Set stores entry under key. A zero ttl keeps it until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry: %w", err)
	}

	return c.client.Set(ctx, key, jsonData, ttl).Err()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connections
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop never stores anything. It stands in when no Redis address is
// configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*Entry, error) {
	return nil, ErrMiss
}

func (Nop) Set(context.Context, string, Entry, time.Duration) error {
	return nil
}
