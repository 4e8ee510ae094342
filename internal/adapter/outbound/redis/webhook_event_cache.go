package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
)

const (
	webhookEventKeyPrefix = "webhook:event:"
	webhookEventCacheName = "webhook_event"
)

// webhookEventCache implements outbound.WebhookEventCachePort.
type webhookEventCache struct {
	client  redis.UniversalClient
	metrics *metrics.Metrics
}

// NewWebhookEventCache creates a processed-event cache backed by Redis.
func NewWebhookEventCache(client redis.UniversalClient, m *metrics.Metrics) outbound.WebhookEventCachePort {
	return &webhookEventCache{client: client, metrics: m}
}

func (c *webhookEventCache) Seen(ctx context.Context, gatewayID int64, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, webhookEventKey(gatewayID, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check webhook event %s: %w", eventID, err)
	}

	if c.metrics != nil {
		if n > 0 {
			c.metrics.RecordCacheHit(webhookEventCacheName)
		} else {
			c.metrics.RecordCacheMiss(webhookEventCacheName)
		}
	}
	return n > 0, nil
}

func (c *webhookEventCache) Remember(ctx context.Context, gatewayID int64, eventID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, webhookEventKey(gatewayID, eventID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("remember webhook event %s: %w", eventID, err)
	}
	return nil
}

func webhookEventKey(gatewayID int64, eventID string) string {
	return fmt.Sprintf("%s%d:%s", webhookEventKeyPrefix, gatewayID, eventID)
}

// Compile-time check
var _ outbound.WebhookEventCachePort = (*webhookEventCache)(nil)
