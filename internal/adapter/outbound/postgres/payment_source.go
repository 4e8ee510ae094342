package postgres

import (
	"context"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentSourceAdapter implements outbound.PaymentSourceDatabasePort.
type paymentSourceAdapter struct {
	db *gorm.DB
}

// NewPaymentSourceAdapter creates a new payment source database adapter.
func NewPaymentSourceAdapter(db *gorm.DB) outbound.PaymentSourceDatabasePort {
	return &paymentSourceAdapter{db: db}
}

func (a *paymentSourceAdapter) Upsert(ctx context.Context, source *model.PaymentSource) error {
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_reference", "type", "brand", "last4", "exp_month", "exp_year", "source_data", "updated_at",
		}),
	}).Create(source).Error
	if err != nil {
		return fmt.Errorf("upsert payment source: %w", err)
	}
	return nil
}

func (a *paymentSourceAdapter) DeleteByReference(ctx context.Context, reference string) error {
	return a.db.WithContext(ctx).Delete(&model.PaymentSource{}, "reference = ?", reference).Error
}

func (a *paymentSourceAdapter) ListByCustomer(ctx context.Context, customerReference string) ([]*model.PaymentSource, error) {
	var sources []*model.PaymentSource
	err := a.db.WithContext(ctx).
		Where("customer_reference = ?", customerReference).
		Order("created_at DESC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// Compile-time check
var _ outbound.PaymentSourceDatabasePort = (*paymentSourceAdapter)(nil)
