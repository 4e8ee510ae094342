package gateway

import (
	"context"

	"github.com/uniedit/paysync/internal/domain/payment"
	"github.com/uniedit/paysync/internal/domain/webhook"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
)

// Gateway variants selectable in configuration.
const (
	VariantIntent  = "intent"
	VariantBilling = "billing"
)

// ChargeCapable gateways take direct payments.
type ChargeCapable interface {
	AuthorizeOrPurchase(ctx context.Context, tx *model.Transaction, paymentMethod string, capture bool) (*model.RequestResult, error)
	Capture(ctx context.Context, tx *model.Transaction, reference string) (*model.RequestResult, error)
	Refund(ctx context.Context, tx *model.Transaction) (*model.RequestResult, error)
}

// SubscriptionCapable gateways manage recurring billing.
type SubscriptionCapable interface {
	SwitchPlan(ctx context.Context, subscriptionID int64, req *model.SwitchPlanRequest) (*model.Subscription, error)
	PreviewSwitchCost(ctx context.Context, subscriptionID, planID int64) (*model.SwitchCostResponse, error)
	ListPayments(ctx context.Context, subscriptionID int64, page model.PaginationRequest) (*model.PaginatedResponse[*model.SubscriptionPayment], error)
	SyncInvoices(ctx context.Context, subscriptionID int64) (int, error)
	SyncPlans(ctx context.Context) (int, error)
}

// PaymentMethodCapable gateways keep stored payment methods in sync.
type PaymentMethodCapable interface {
	SyncPaymentMethods(ctx context.Context) (int, error)
}

// WebhookCapable gateways accept processor webhooks.
type WebhookCapable interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) webhook.Outcome
}

// Gateway is a configured payment gateway.
type Gateway interface {
	WebhookCapable

	ID() int64
	Name() string
	Variant() string
}

// Info identifies a configured gateway.
type Info struct {
	ID   int64
	Name string
}

// BillingGateway reconciles subscriptions, invoices and payment methods but
// takes no direct charges.
type BillingGateway struct {
	info          Info
	charges       payment.ChargeDomain
	subscriptions inbound.SubscriptionDomain
	invoices      inbound.InvoiceDomain
	dispatcher    *webhook.Dispatcher
}

// NewBillingGateway creates a billing gateway and registers its webhook routes.
func NewBillingGateway(
	info Info,
	charges payment.ChargeDomain,
	subscriptions inbound.SubscriptionDomain,
	invoices inbound.InvoiceDomain,
	dispatcher *webhook.Dispatcher,
) *BillingGateway {
	g := &BillingGateway{
		info:          info,
		charges:       charges,
		subscriptions: subscriptions,
		invoices:      invoices,
		dispatcher:    dispatcher,
	}
	g.registerRoutes()
	return g
}

func (g *BillingGateway) registerRoutes() {
	d := g.dispatcher

	d.Register("customer.subscription.updated", g.subscriptions.HandleSubscriptionUpdated)
	d.Register("customer.subscription.deleted", g.subscriptions.HandleSubscriptionExpired)

	d.Register("invoice.created", g.invoices.HandleInvoiceCreated)
	d.Register("invoice.payment_succeeded", g.invoices.HandleInvoiceSucceeded)

	d.Register("plan.created", g.subscriptions.HandlePlanEvent)
	d.Register("plan.updated", g.subscriptions.HandlePlanEvent)
	d.Register("plan.deleted", g.subscriptions.HandlePlanDeleted)
	d.Register("product.created", g.subscriptions.HandleProductEvent)
	d.Register("product.updated", g.subscriptions.HandleProductEvent)

	d.Register("payment_method.attached", g.charges.HandlePaymentMethodAttached)
	d.Register("payment_method.detached", g.charges.HandlePaymentMethodDetached)
	d.Register("customer.deleted", g.charges.HandleCustomerDeleted)
}

// ID returns the gateway id.
func (g *BillingGateway) ID() int64 { return g.info.ID }

// Name returns the gateway name.
func (g *BillingGateway) Name() string { return g.info.Name }

// Variant returns the configured variant.
func (g *BillingGateway) Variant() string { return VariantBilling }

// HandleWebhook verifies and dispatches one webhook delivery.
func (g *BillingGateway) HandleWebhook(ctx context.Context, payload []byte, signature string) webhook.Outcome {
	return g.dispatcher.Handle(ctx, payload, signature)
}

func (g *BillingGateway) SwitchPlan(ctx context.Context, subscriptionID int64, req *model.SwitchPlanRequest) (*model.Subscription, error) {
	return g.subscriptions.SwitchPlan(ctx, subscriptionID, req)
}

func (g *BillingGateway) PreviewSwitchCost(ctx context.Context, subscriptionID, planID int64) (*model.SwitchCostResponse, error) {
	return g.subscriptions.PreviewSwitchCost(ctx, subscriptionID, planID)
}

func (g *BillingGateway) ListPayments(ctx context.Context, subscriptionID int64, page model.PaginationRequest) (*model.PaginatedResponse[*model.SubscriptionPayment], error) {
	return g.invoices.ListPayments(ctx, subscriptionID, page)
}

func (g *BillingGateway) SyncInvoices(ctx context.Context, subscriptionID int64) (int, error) {
	return g.invoices.SyncInvoices(ctx, subscriptionID)
}

func (g *BillingGateway) SyncPlans(ctx context.Context) (int, error) {
	return g.subscriptions.SyncPlans(ctx)
}

func (g *BillingGateway) SyncPaymentMethods(ctx context.Context) (int, error) {
	return g.charges.SyncPaymentMethods(ctx)
}

// IntentGateway is a billing gateway that also charges through payment intents.
type IntentGateway struct {
	*BillingGateway
}

// NewIntentGateway creates an intent gateway and registers its webhook routes.
func NewIntentGateway(
	info Info,
	charges payment.ChargeDomain,
	subscriptions inbound.SubscriptionDomain,
	invoices inbound.InvoiceDomain,
	dispatcher *webhook.Dispatcher,
) *IntentGateway {
	g := &IntentGateway{
		BillingGateway: NewBillingGateway(info, charges, subscriptions, invoices, dispatcher),
	}

	for _, eventType := range []string{
		"payment_intent.succeeded",
		"payment_intent.payment_failed",
		"payment_intent.canceled",
		"payment_intent.requires_action",
		"payment_intent.amount_capturable_updated",
	} {
		dispatcher.Register(eventType, charges.HandleIntentEvent)
	}
	dispatcher.Register("charge.refund.updated", charges.HandleRefundUpdated)
	return g
}

// Variant returns the configured variant.
func (g *IntentGateway) Variant() string { return VariantIntent }

func (g *IntentGateway) AuthorizeOrPurchase(ctx context.Context, tx *model.Transaction, paymentMethod string, capture bool) (*model.RequestResult, error) {
	return g.charges.AuthorizeOrPurchase(ctx, tx, paymentMethod, capture)
}

func (g *IntentGateway) Capture(ctx context.Context, tx *model.Transaction, reference string) (*model.RequestResult, error) {
	return g.charges.Capture(ctx, tx, reference)
}

func (g *IntentGateway) Refund(ctx context.Context, tx *model.Transaction) (*model.RequestResult, error) {
	return g.charges.Refund(ctx, tx)
}

// Compile-time interface checks
var (
	_ Gateway              = (*BillingGateway)(nil)
	_ SubscriptionCapable  = (*BillingGateway)(nil)
	_ PaymentMethodCapable = (*BillingGateway)(nil)
	_ Gateway              = (*IntentGateway)(nil)
	_ ChargeCapable        = (*IntentGateway)(nil)
	_ SubscriptionCapable  = (*IntentGateway)(nil)
)
