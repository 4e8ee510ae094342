package inbound

import "github.com/gin-gonic/gin"

// CheckoutHttpPort defines HTTP handlers for direct charges.
type CheckoutHttpPort interface {
	// Authorize handles POST /gateways/:gateway_id/transactions/:transaction_id/authorize
	Authorize(c *gin.Context)

	// Purchase handles POST /gateways/:gateway_id/transactions/:transaction_id/purchase
	Purchase(c *gin.Context)

	// Capture handles POST /gateways/:gateway_id/transactions/:transaction_id/capture
	Capture(c *gin.Context)

	// Refund handles POST /gateways/:gateway_id/transactions/:transaction_id/refund
	Refund(c *gin.Context)

	// ListPaymentMethods handles GET /gateways/:gateway_id/payment-methods
	ListPaymentMethods(c *gin.Context)
}

// SubscriptionHttpPort defines HTTP handlers for subscription billing.
type SubscriptionHttpPort interface {
	// SwitchPlan handles POST /gateways/:gateway_id/subscriptions/:subscription_id/switch-plan
	SwitchPlan(c *gin.Context)

	// PreviewSwitchCost handles GET /gateways/:gateway_id/subscriptions/:subscription_id/switch-plan/preview
	PreviewSwitchCost(c *gin.Context)

	// ListPayments handles GET /gateways/:gateway_id/subscriptions/:subscription_id/payments
	ListPayments(c *gin.Context)
}

// WebhookHttpPort defines the processor webhook endpoint.
type WebhookHttpPort interface {
	// HandleWebhook handles POST /webhooks/:gateway_id
	HandleWebhook(c *gin.Context)
}

// AdminHttpPort defines operator endpoints.
type AdminHttpPort interface {
	// SyncPlans handles POST /admin/gateways/:gateway_id/sync/plans
	SyncPlans(c *gin.Context)

	// SyncPaymentMethods handles POST /admin/gateways/:gateway_id/sync/payment-methods
	SyncPaymentMethods(c *gin.Context)

	// SyncInvoices handles POST /admin/gateways/:gateway_id/subscriptions/:subscription_id/sync-invoices
	SyncInvoices(c *gin.Context)
}
