package stripe

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/uniedit/paysync/internal/port/outbound"
)

// VerifyWebhookSignature checks a Stripe-Signature header against the
// endpoint secret. A zero tolerance uses the library default.
func (p *Processor) VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, header, secret, tolerance); err != nil {
		return fmt.Errorf("%w: %v", outbound.ErrInvalidSignature, err)
	}
	return nil
}
