package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"gorm.io/gorm"
)

// reconciledColumns are the subscription columns owned by reconciliation.
var reconciledColumns = []string{
	"plan_id", "status", "quantity", "trial_ends_at", "subscription_data",
	"has_started", "is_canceled", "date_canceled", "is_expired", "date_expired",
	"is_suspended", "date_suspended", "next_payment_date", "updated_at",
}

// subscriptionAdapter implements outbound.SubscriptionDatabasePort.
type subscriptionAdapter struct {
	db *gorm.DB
}

// NewSubscriptionAdapter creates a new subscription database adapter.
func NewSubscriptionAdapter(db *gorm.DB) outbound.SubscriptionDatabasePort {
	return &subscriptionAdapter{db: db}
}

func (a *subscriptionAdapter) FindByID(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := a.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (a *subscriptionAdapter) FindByReference(ctx context.Context, reference string) (*model.Subscription, error) {
	var sub model.Subscription
	err := a.db.WithContext(ctx).First(&sub, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateReconciled writes the reconciled columns only; user and gateway
// ownership stay with the host.
func (a *subscriptionAdapter) UpdateReconciled(ctx context.Context, sub *model.Subscription) error {
	err := a.db.WithContext(ctx).
		Model(sub).
		Select(reconciledColumns).
		Updates(sub).Error
	if err != nil {
		return fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	return nil
}

// Compile-time check
var _ outbound.SubscriptionDatabasePort = (*subscriptionAdapter)(nil)
