package postgres

import (
	"context"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionPaymentAdapter implements outbound.SubscriptionPaymentDatabasePort.
type subscriptionPaymentAdapter struct {
	db *gorm.DB
}

// NewSubscriptionPaymentAdapter creates a new subscription payment database adapter.
func NewSubscriptionPaymentAdapter(db *gorm.DB) outbound.SubscriptionPaymentDatabasePort {
	return &subscriptionPaymentAdapter{db: db}
}

func (a *subscriptionPaymentAdapter) Upsert(ctx context.Context, payment *model.SubscriptionPayment) error {
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "invoice_reference"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subscription_id", "reference", "amount", "currency", "invoiced_at", "paid", "payment_data", "updated_at",
		}),
	}).Create(payment).Error
	if err != nil {
		return fmt.Errorf("upsert subscription payment: %w", err)
	}
	return nil
}

func (a *subscriptionPaymentAdapter) ListBySubscription(ctx context.Context, subscriptionID int64, page model.PaginationRequest) ([]*model.SubscriptionPayment, int64, error) {
	query := a.db.WithContext(ctx).
		Model(&model.SubscriptionPayment{}).
		Where("subscription_id = ?", subscriptionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []*model.SubscriptionPayment
	err := query.
		Order("invoiced_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Compile-time check
var _ outbound.SubscriptionPaymentDatabasePort = (*subscriptionPaymentAdapter)(nil)
