package outbound

import (
	"context"
	"errors"

	"github.com/uniedit/paysync/internal/model"
)

// ErrDuplicate is returned by Create operations that hit a unique constraint.
var ErrDuplicate = errors.New("record already exists")

// PaymentIntentDatabasePort defines payment intent persistence operations.
type PaymentIntentDatabasePort interface {
	// Find returns the record for a (gateway, customer, transaction hash) triple.
	Find(ctx context.Context, gatewayID, customerID int64, transactionHash string) (*model.PaymentIntentRecord, error)

	// FindByReference returns the record holding a processor intent reference.
	FindByReference(ctx context.Context, reference string) (*model.PaymentIntentRecord, error)

	// Upsert inserts the record when its ID is unset, else updates it in place.
	Upsert(ctx context.Context, record *model.PaymentIntentRecord) error

	// DeleteAll removes every stored intent.
	DeleteAll(ctx context.Context) (int64, error)
}

// CustomerDatabasePort defines processor customer persistence operations.
type CustomerDatabasePort interface {
	// FindByUser returns the customer of a user on a gateway.
	FindByUser(ctx context.Context, userID, gatewayID int64) (*model.CustomerRecord, error)

	// FindByReference returns the customer holding a processor reference.
	FindByReference(ctx context.Context, reference string) (*model.CustomerRecord, error)

	// Create inserts a new customer record. It returns ErrDuplicate when the
	// user already has a customer on the gateway.
	Create(ctx context.Context, customer *model.CustomerRecord) error

	// Delete removes a customer record.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every stored customer.
	DeleteAll(ctx context.Context) (int64, error)
}

// PaymentSourceDatabasePort defines stored payment method operations.
type PaymentSourceDatabasePort interface {
	// Upsert inserts or replaces a payment source by reference.
	Upsert(ctx context.Context, source *model.PaymentSource) error

	// DeleteByReference removes a payment source.
	DeleteByReference(ctx context.Context, reference string) error

	// ListByCustomer lists the payment sources of a processor customer.
	ListByCustomer(ctx context.Context, customerReference string) ([]*model.PaymentSource, error)
}

// TransactionDatabasePort reads host-owned transactions.
type TransactionDatabasePort interface {
	// FindByID returns a transaction by ID.
	FindByID(ctx context.Context, id int64) (*model.Transaction, error)
}
