package outbound

import (
	"context"
	"time"
)

// WebhookEventCachePort remembers processed webhook event ids.
type WebhookEventCachePort interface {
	// Seen reports whether the event was already processed for the gateway.
	Seen(ctx context.Context, gatewayID int64, eventID string) (bool, error)

	// Remember marks the event as processed for ttl.
	Remember(ctx context.Context, gatewayID int64, eventID string, ttl time.Duration) error
}

// RateLimiterPort counts requests in a sliding window.
type RateLimiterPort interface {
	// Allow records one request for key and reports whether it fits in limit
	// for the window, together with the requests left in the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
}

// CachedResponse is an HTTP response replayed for a repeated Idempotency-Key.
type CachedResponse struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
	BodyHash   string            `json:"body_hash"`
}

// IdempotencyCachePort stores responses keyed by client idempotency keys.
type IdempotencyCachePort interface {
	// Load returns the stored response, or nil when none exists.
	Load(ctx context.Context, key string) (*CachedResponse, error)

	// Lock claims the key while the first request is in flight.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases a claim taken by Lock.
	Unlock(ctx context.Context, key string) error

	// Store saves the response for ttl.
	Store(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error
}
