package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceAdapter implements outbound.InvoiceDatabasePort.
type invoiceAdapter struct {
	db *gorm.DB
}

// NewInvoiceAdapter creates a new invoice database adapter.
func NewInvoiceAdapter(db *gorm.DB) outbound.InvoiceDatabasePort {
	return &invoiceAdapter{db: db}
}

func (a *invoiceAdapter) FindByReference(ctx context.Context, reference string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := a.db.WithContext(ctx).First(&invoice, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (a *invoiceAdapter) Upsert(ctx context.Context, invoice *model.Invoice) error {
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscription_id", "invoiced_at", "invoice_data", "updated_at"}),
	}).Create(invoice).Error
	if err != nil {
		return fmt.Errorf("upsert invoice: %w", err)
	}
	return nil
}

func (a *invoiceAdapter) DeleteAll(ctx context.Context) (int64, error) {
	result := a.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Invoice{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete invoices: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Compile-time check
var _ outbound.InvoiceDatabasePort = (*invoiceAdapter)(nil)
