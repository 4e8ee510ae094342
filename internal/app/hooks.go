package app

import (
	"context"

	"github.com/uniedit/paysync/internal/infra/events"
	"go.uber.org/zap"
)

// newAuditListener logs every webhook delivery and created invoice. Host
// listeners registered on the same bus run after it.
func newAuditListener(log *zap.Logger) events.Handler {
	log = log.Named("audit")
	return events.NewHandlerFunc(
		[]string{events.WebhookReceivedType, events.InvoiceCreatedType},
		func(_ context.Context, event events.Event) error {
			switch e := event.(type) {
			case *events.WebhookReceivedEvent:
				log.Info("Webhook received",
					zap.Int64("gateway_id", e.GatewayID),
					zap.String("webhook_type", e.Type),
					zap.String("event_id", e.Reference()),
				)
			case *events.InvoiceCreatedEvent:
				log.Info("Invoice created",
					zap.Int64("gateway_id", e.GatewayID),
					zap.String("invoice", e.Reference()),
					zap.String("subscription", e.Invoice.String("subscription")),
				)
			}
			return nil
		},
	)
}
