package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis with the small surface the quote service needs:
// byte-value get/set with TTL plus counters for rate limiting.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis client. ttl is the default expiry applied by Set.
func New(addr, password string, db int, ttl time.Duration) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     100,
			MinIdleConns: 10,
		}),
		ttl: ttl,
	}
}

// Get retrieves a key's value.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

// Set sets a key's value with the client's default TTL.
func (c *Client) Set(ctx context.Context, key string, data []byte) error {
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// SetWithTTL sets a key's value with an explicit TTL.
func (c *Client) SetWithTTL(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Del deletes a key.
func (c *Client) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Incr increments the key's value by 1 and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire sets a key's time to live.
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return c.client.Expire(ctx, key, expiration).Result()
}

// Close closes the Redis connection.
func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}
