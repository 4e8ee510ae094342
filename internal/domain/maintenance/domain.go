package maintenance

import (
	"context"
	"fmt"

	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

// ResetResult counts the rows removed by a reset.
type ResetResult struct {
	Customers int64 `json:"customers"`
	Invoices  int64 `json:"invoices"`
	Intents   int64 `json:"intents"`
}

// Domain runs administrative operations over the payment tables.
type Domain struct {
	customerDB outbound.CustomerDatabasePort
	invoiceDB  outbound.InvoiceDatabasePort
	intentDB   outbound.PaymentIntentDatabasePort
	logger     *zap.Logger
}

// NewMaintenanceDomain creates a new maintenance domain service.
func NewMaintenanceDomain(
	customerDB outbound.CustomerDatabasePort,
	invoiceDB outbound.InvoiceDatabasePort,
	intentDB outbound.PaymentIntentDatabasePort,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		customerDB: customerDB,
		invoiceDB:  invoiceDB,
		intentDB:   intentDB,
		logger:     logger,
	}
}

// Reset deletes every stored customer, invoice and payment intent. The
// counts of the steps that completed are returned even on failure.
func (d *Domain) Reset(ctx context.Context) (*ResetResult, error) {
	result := &ResetResult{}
	var err error

	if result.Customers, err = d.customerDB.DeleteAll(ctx); err != nil {
		return result, fmt.Errorf("delete customers: %w", err)
	}
	if result.Invoices, err = d.invoiceDB.DeleteAll(ctx); err != nil {
		return result, fmt.Errorf("delete invoices: %w", err)
	}
	if result.Intents, err = d.intentDB.DeleteAll(ctx); err != nil {
		return result, fmt.Errorf("delete payment intents: %w", err)
	}

	d.logger.Warn("payment data reset",
		zap.Int64("customers", result.Customers),
		zap.Int64("invoices", result.Invoices),
		zap.Int64("intents", result.Intents),
	)
	return result, nil
}
