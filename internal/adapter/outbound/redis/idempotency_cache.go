package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyCacheName = "idempotency"
)

// idempotencyCache implements outbound.IdempotencyCachePort.
type idempotencyCache struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
}

// NewIdempotencyCache creates an idempotent-response cache backed by Redis.
func NewIdempotencyCache(client redis.UniversalClient, m *metrics.Metrics) outbound.IdempotencyCachePort {
	return &idempotencyCache{client: client, metrics: m}
}

func (c *idempotencyCache) Load(ctx context.Context, key string) (*outbound.CachedResponse, error) {
	data, err := c.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.record(false)
			return nil, nil
		}
		return nil, fmt.Errorf("load idempotent response: %w", err)
	}

	var resp outbound.CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotent response: %w", err)
	}
	c.record(true)
	return &resp, nil
}

func (c *idempotencyCache) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, idempotencyKeyPrefix+key+":lock", 1, ttl).Result()
}

func (c *idempotencyCache) Unlock(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyKeyPrefix+key+":lock").Err()
}

func (c *idempotencyCache) Store(ctx context.Context, key string, resp *outbound.CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode idempotent response: %w", err)
	}
	return c.client.Set(ctx, idempotencyKeyPrefix+key, data, ttl).Err()
}

func (c *idempotencyCache) record(hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.RecordCacheHit(idempotencyCacheName)
	} else {
		c.metrics.RecordCacheMiss(idempotencyCacheName)
	}
}

// Compile-time check
var _ outbound.IdempotencyCachePort = (*idempotencyCache)(nil)
