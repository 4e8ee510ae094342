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

// planAdapter implements outbound.PlanDatabasePort.
type planAdapter struct {
	db *gorm.DB
}

// NewPlanAdapter creates a new plan database adapter.
func NewPlanAdapter(db *gorm.DB) outbound.PlanDatabasePort {
	return &planAdapter{db: db}
}

func (a *planAdapter) FindByID(ctx context.Context, id int64) (*model.Plan, error) {
	var plan model.Plan
	err := a.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (a *planAdapter) FindByReference(ctx context.Context, reference string) (*model.Plan, error) {
	var plan model.Plan
	err := a.db.WithContext(ctx).First(&plan, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (a *planAdapter) ListByProduct(ctx context.Context, productReference string) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := a.db.WithContext(ctx).
		Where("product_reference = ?", productReference).
		Order("amount ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (a *planAdapter) Upsert(ctx context.Context, plan *model.Plan) error {
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gateway_id", "product_reference", "name", "amount", "currency",
			"interval", "interval_count", "active", "features", "plan_data", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (a *planAdapter) DeleteByReference(ctx context.Context, reference string) error {
	return a.db.WithContext(ctx).Delete(&model.Plan{}, "reference = ?", reference).Error
}

// Compile-time check
var _ outbound.PlanDatabasePort = (*planAdapter)(nil)
