package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talkk-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const recentBroadcastsKey = "broadcasts:recent"

// ErrMiss is returned when the cached feed is absent or expired
var ErrMiss = errors.New("cache miss")

// BroadcastCache caches the recent-broadcast feed in Redis. The key is
// global, not per viewer; the TTL bounds worst-case staleness.
type BroadcastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBroadcastCache creates a new broadcast cache
func NewBroadcastCache(client *redis.Client, ttl time.Duration) *BroadcastCache {
	return &BroadcastCache{client: client, ttl: ttl}
}

// Get returns the cached feed, or ErrMiss when nothing is cached
func (c *BroadcastCache) Get(ctx context.Context) ([]*models.Broadcast, error) {
	data, err := c.client.Get(ctx, recentBroadcastsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read broadcast cache: %w", err)
	}

	var broadcasts []*models.Broadcast
	if err := json.Unmarshal(data, &broadcasts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached broadcasts: %w", err)
	}
	return broadcasts, nil
}

// Set stores the feed with the configured TTL
func (c *BroadcastCache) Set(ctx context.Context, broadcasts []*models.Broadcast) error {
	data, err := json.Marshal(broadcasts)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcasts: %w", err)
	}
	if err := c.client.Set(ctx, recentBroadcastsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write broadcast cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached feed so the next list recomputes it
func (c *BroadcastCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, recentBroadcastsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate broadcast cache: %w", err)
	}
	return nil
}
