package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookEventKey(t *testing.T) {
	assert.Equal(t, "webhook:event:7:evt_123", webhookEventKey(7, "evt_123"))
	assert.NotEqual(t, webhookEventKey(1, "evt_1"), webhookEventKey(2, "evt_1"))
}
