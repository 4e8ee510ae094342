package outbound

import (
	"context"

	"github.com/uniedit/paysync/internal/model"
)

// SubscriptionDatabasePort defines the subscription operations reconciliation needs.
type SubscriptionDatabasePort interface {
	// FindByID returns a subscription by ID.
	FindByID(ctx context.Context, id int64) (*model.Subscription, error)

	// FindByReference returns the subscription holding a processor reference.
	FindByReference(ctx context.Context, reference string) (*model.Subscription, error)

	// UpdateReconciled persists the processor status, plan, snapshot and status flags.
	UpdateReconciled(ctx context.Context, sub *model.Subscription) error
}

// InvoiceDatabasePort defines invoice persistence operations.
type InvoiceDatabasePort interface {
	// FindByReference returns the invoice holding a processor reference.
	FindByReference(ctx context.Context, reference string) (*model.Invoice, error)

	// Upsert inserts or updates an invoice by reference.
	Upsert(ctx context.Context, invoice *model.Invoice) error

	// DeleteAll removes every stored invoice.
	DeleteAll(ctx context.Context) (int64, error)
}

// SubscriptionPaymentDatabasePort defines payment history operations.
type SubscriptionPaymentDatabasePort interface {
	// Upsert inserts or updates a payment by invoice reference.
	Upsert(ctx context.Context, payment *model.SubscriptionPayment) error

	// ListBySubscription lists payments newest invoice first.
	ListBySubscription(ctx context.Context, subscriptionID int64, page model.PaginationRequest) ([]*model.SubscriptionPayment, int64, error)
}

// PlanDatabasePort defines plan catalogue operations.
type PlanDatabasePort interface {
	// FindByID returns a plan by ID.
	FindByID(ctx context.Context, id int64) (*model.Plan, error)

	// FindByReference returns the plan holding a processor reference.
	FindByReference(ctx context.Context, reference string) (*model.Plan, error)

	// ListByProduct lists the plans of a processor product.
	ListByProduct(ctx context.Context, productReference string) ([]*model.Plan, error)

	// Upsert inserts or updates a plan by reference.
	Upsert(ctx context.Context, plan *model.Plan) error

	// DeleteByReference removes a plan.
	DeleteByReference(ctx context.Context, reference string) error
}
