package outbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uniedit/paysync/internal/model"
)

var (
	// ErrCustomerDeleted is returned when the processor reports a customer as deleted or missing.
	ErrCustomerDeleted = errors.New("processor customer deleted")

	// ErrResourceMissing is returned when the processor has no object with the given reference.
	ErrResourceMissing = errors.New("processor resource missing")

	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// DeclineError is a structured processor failure with a machine-readable code.
type DeclineError struct {
	Type        string
	Code        string
	DeclineCode string
	Message     string
	HTTPStatus  int
	// Intent is the payment intent attached to the failure, if any.
	Intent model.Snapshot
}

// Error implements the error interface.
func (e *DeclineError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("%s (%s/%s): %s", e.Type, e.Code, e.DeclineCode, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
}

// CustomerParams describes a processor customer to create.
type CustomerParams struct {
	Email       string
	Description string
	Metadata    map[string]string
}

// Capture methods of a payment intent.
const (
	CaptureMethodAutomatic = "automatic"
	CaptureMethodManual    = "manual"
)

// PaymentIntentParams describes a payment intent create or update.
type PaymentIntentParams struct {
	Amount        int64
	Currency      string
	Customer      string
	Description   string
	PaymentMethod string
	CaptureMethod string
	Metadata      map[string]string
}

// RefundParams describes a refund. A zero Amount refunds in full.
type RefundParams struct {
	Charge        string
	PaymentIntent string
	Amount        int64
	Metadata      map[string]string
}

// SubscriptionUpdateParams replaces the single line item of a subscription.
type SubscriptionUpdateParams struct {
	ItemID                string
	Plan                  string
	Quantity              int64
	Prorate               *bool
	BillingCycleAnchorNow bool
	ProrationDate         *int64
}

// UpcomingInvoiceParams previews a hypothetical item swap.
type UpcomingInvoiceParams struct {
	Customer              string
	Subscription          string
	ItemID                string
	Plan                  string
	BillingCycleAnchorNow bool
}

// InvoiceFilter narrows an invoice listing.
type InvoiceFilter struct {
	Customer     string
	Subscription string
	Status       string
}

// ProcessorPort is the remote payment processor bound to one gateway.
// Objects cross this boundary as snapshots. Mutating calls take an
// idempotency key so replays have no extra side effect.
type ProcessorPort interface {
	CreateCustomer(ctx context.Context, params *CustomerParams, idempotencyKey string) (model.Snapshot, error)
	RetrieveCustomer(ctx context.Context, reference string) (model.Snapshot, error)
	ListCustomers(ctx context.Context, fn func(model.Snapshot) error) error
	ListPaymentMethods(ctx context.Context, customerReference string, fn func(model.Snapshot) error) error

	CreatePaymentIntent(ctx context.Context, params *PaymentIntentParams, idempotencyKey string) (model.Snapshot, error)
	UpdatePaymentIntent(ctx context.Context, reference string, params *PaymentIntentParams, idempotencyKey string) (model.Snapshot, error)
	ConfirmPaymentIntent(ctx context.Context, reference, returnURL, idempotencyKey string) (model.Snapshot, error)
	CapturePaymentIntent(ctx context.Context, reference, idempotencyKey string) (model.Snapshot, error)
	RetrievePaymentIntent(ctx context.Context, reference string) (model.Snapshot, error)
	CreateRefund(ctx context.Context, params *RefundParams, idempotencyKey string) (model.Snapshot, error)

	RetrieveSubscription(ctx context.Context, reference string) (model.Snapshot, error)
	SaveSubscription(ctx context.Context, reference string, params *SubscriptionUpdateParams, idempotencyKey string) (model.Snapshot, error)

	ListInvoices(ctx context.Context, filter InvoiceFilter, fn func(model.Snapshot) error) error
	RetrieveInvoice(ctx context.Context, reference string) (model.Snapshot, error)
	PayInvoice(ctx context.Context, reference, idempotencyKey string) (model.Snapshot, error)
	CreateInvoice(ctx context.Context, customerReference, subscriptionReference, idempotencyKey string) (model.Snapshot, error)
	PreviewUpcomingInvoice(ctx context.Context, params *UpcomingInvoiceParams) (model.Snapshot, error)

	ListPlans(ctx context.Context, fn func(model.Snapshot) error) error
	ListProducts(ctx context.Context, fn func(model.Snapshot) error) error

	// VerifyWebhookSignature checks the signature header against secret within tolerance.
	VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error
}
