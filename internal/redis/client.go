package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Webhook deduplication. The gateway may redeliver the same notification;
// the first delivery claims the key, redeliveries see it already set.
// The database status guard remains the source of truth, this is only a
// fast path.

func notificationKey(invoiceNumber, transactionStatus string) string {
	return fmt.Sprintf("gateway_notif:%s:%s", invoiceNumber, transactionStatus)
}

// ClaimNotification returns true if this delivery is the first one seen for
// the given invoice/status pair.
func (c *Client) ClaimNotification(invoiceNumber, transactionStatus string, ttl time.Duration) (bool, error) {
	ctx := context.Background()
	return c.rdb.SetNX(ctx, notificationKey(invoiceNumber, transactionStatus), "1", ttl).Result()
}

// ReleaseNotification drops a claim so a failed reconciliation can be
// retried by the gateway.
func (c *Client) ReleaseNotification(invoiceNumber, transactionStatus string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, notificationKey(invoiceNumber, transactionStatus)).Err()
}

// Settings snapshot cache

const settingsKey = "store_settings"

func (c *Client) SetSettingsCache(value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return c.rdb.Set(ctx, settingsKey, jsonData, ttl).Err()
}

func (c *Client) GetSettingsCache(dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, settingsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("settings not cached")
		}
		return fmt.Errorf("failed to get settings cache: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) InvalidateSettingsCache() error {
	ctx := context.Background()
	return c.rdb.Del(ctx, settingsKey).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
