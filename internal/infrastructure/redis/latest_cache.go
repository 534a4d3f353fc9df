package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const latestKey = keyPrefix + "snapshot:latest"

// LatestCache keeps the most recent snapshot under a single key.
type LatestCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLatestCache(client *redis.Client, ttl time.Duration) *LatestCache {
	return &LatestCache{Client: client, TTL: ttl}
}

// Put stores s unless the cached snapshot is for a later date.
func (c *LatestCache) Put(ctx context.Context, s domain.Snapshot) error {
	cur, err := c.Get(ctx)
	if err == nil && cur.Date > s.Date {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: encode snapshot: %w", err)
	}
	return c.Client.Set(ctx, latestKey, b, c.TTL).Err()
}

func (c *LatestCache) Get(ctx context.Context) (domain.Snapshot, error) {
	b, err := c.Client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, application.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	var s domain.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return s, nil
}

// Ping reports whether redis is reachable.
func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}
