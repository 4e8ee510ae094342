package events

import "github.com/uniedit/paysync/internal/model"

// Hook event types.
const (
	RequestBuildingType = "payment.request_building"
	WebhookReceivedType = "webhook.received"
	InvoiceCreatedType  = "invoice.created"
	InvoiceSavingType   = "invoice.saving"
)

// RequestBuildingEvent is emitted before an outbound payment request is sent.
// Listeners may add keys to Metadata; everything else is restored afterwards.
type RequestBuildingEvent struct {
	BaseEvent

	GatewayID     int64              `json:"gateway_id"`
	TransactionID int64              `json:"transaction_id"`
	Amount        int64              `json:"amount"`
	Currency      string             `json:"currency"`
	Description   string             `json:"description"`
	Metadata      map[string]string  `json:"metadata"`
	Transaction   *model.Transaction `json:"-"`
}

// NewRequestBuildingEvent creates a new RequestBuildingEvent.
func NewRequestBuildingEvent(gatewayID int64, tx *model.Transaction, amount int64, currency, description string, metadata map[string]string) *RequestBuildingEvent {
	return &RequestBuildingEvent{
		BaseEvent:     NewBaseEvent(RequestBuildingType, tx.Hash, "transaction"),
		GatewayID:     gatewayID,
		TransactionID: tx.ID,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Metadata:      metadata,
		Transaction:   tx,
	}
}

// WebhookReceivedEvent carries the raw decoded webhook payload.
type WebhookReceivedEvent struct {
	BaseEvent

	GatewayID int64          `json:"gateway_id"`
	Type      string         `json:"webhook_type"`
	Payload   model.Snapshot `json:"payload"`
}

// NewWebhookReceivedEvent creates a new WebhookReceivedEvent.
func NewWebhookReceivedEvent(gatewayID int64, payload model.Snapshot) *WebhookReceivedEvent {
	return &WebhookReceivedEvent{
		BaseEvent: NewBaseEvent(WebhookReceivedType, payload.String("id"), "webhook"),
		GatewayID: gatewayID,
		Type:      payload.String("type"),
		Payload:   payload,
	}
}

// InvoiceCreatedEvent carries a raw processor invoice from invoice.created.
type InvoiceCreatedEvent struct {
	BaseEvent

	GatewayID int64          `json:"gateway_id"`
	Invoice   model.Snapshot `json:"invoice"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent.
func NewInvoiceCreatedEvent(gatewayID int64, invoice model.Snapshot) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseEvent: NewBaseEvent(InvoiceCreatedType, invoice.String("id"), "invoice"),
		GatewayID: gatewayID,
		Invoice:   invoice,
	}
}

// InvoiceSavingEvent is emitted before an invoice is persisted. A listener
// returning ErrRejected prevents the save.
type InvoiceSavingEvent struct {
	BaseEvent

	GatewayID    int64               `json:"gateway_id"`
	Invoice      *model.Invoice      `json:"invoice"`
	Subscription *model.Subscription `json:"-"`
}

// NewInvoiceSavingEvent creates a new InvoiceSavingEvent.
func NewInvoiceSavingEvent(gatewayID int64, invoice *model.Invoice, sub *model.Subscription) *InvoiceSavingEvent {
	return &InvoiceSavingEvent{
		BaseEvent:    NewBaseEvent(InvoiceSavingType, invoice.Reference, "invoice"),
		GatewayID:    gatewayID,
		Invoice:      invoice,
		Subscription: sub,
	}
}
