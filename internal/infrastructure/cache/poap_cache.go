package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultPoapKeyPrefix = "poap:wallet:"

// RedisPoapCache holds recently resolved POAP sets in front of the
// Postgres cache. Entries are whole wallet sets, JSON encoded.
type RedisPoapCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPoapCache wraps an existing client. An empty prefix uses the default.
func NewRedisPoapCache(client *redis.Client, keyPrefix string) *RedisPoapCache {
	if keyPrefix == "" {
		keyPrefix = defaultPoapKeyPrefix
	}
	return &RedisPoapCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached set for wallet. ok is false on a miss.
func (c *RedisPoapCache) Get(ctx context.Context, wallet string) ([]domain.PoapRecord, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+wallet).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read poap cache: %w", err)
	}

	var records []domain.PoapRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt entry is a miss; the next write replaces it.
		return nil, false, nil
	}
	return records, true, nil
}

// Set stores the set for wallet with the given TTL.
func (c *RedisPoapCache) Set(ctx context.Context, wallet string, records []domain.PoapRecord, ttl time.Duration) error {
	if records == nil {
		records = []domain.PoapRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode poap cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+wallet, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write poap cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached set for wallet.
func (c *RedisPoapCache) Invalidate(ctx context.Context, wallet string) error {
	return c.client.Del(ctx, c.keyPrefix+wallet).Err()
}
