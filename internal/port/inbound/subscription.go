package inbound

import (
	"context"

	"github.com/uniedit/paysync/internal/model"
)

// SubscriptionDomain defines subscription reconciliation and plan switching.
type SubscriptionDomain interface {
	HandleSubscriptionUpdated(ctx context.Context, snap model.Snapshot) error
	HandleSubscriptionExpired(ctx context.Context, snap model.Snapshot) error

	HandlePlanEvent(ctx context.Context, snap model.Snapshot) error
	HandlePlanDeleted(ctx context.Context, snap model.Snapshot) error
	HandleProductEvent(ctx context.Context, snap model.Snapshot) error
	SyncPlans(ctx context.Context) (int, error)

	SwitchPlan(ctx context.Context, subscriptionID int64, req *model.SwitchPlanRequest) (*model.Subscription, error)
	PreviewSwitchCost(ctx context.Context, subscriptionID, planID int64) (*model.SwitchCostResponse, error)
}

// InvoiceDomain defines invoice reconciliation and payment history.
type InvoiceDomain interface {
	HandleInvoiceCreated(ctx context.Context, snap model.Snapshot) error
	HandleInvoiceSucceeded(ctx context.Context, snap model.Snapshot) error

	SyncInvoices(ctx context.Context, subscriptionID int64) (int, error)
	ListPayments(ctx context.Context, subscriptionID int64, page model.PaginationRequest) (*model.PaginatedResponse[*model.SubscriptionPayment], error)
}
