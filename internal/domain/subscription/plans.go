package subscription

import (
	"context"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"go.uber.org/zap"
)

// --- Plan Catalogue ---

// HandlePlanEvent upserts a processor plan. Product details already stored
// on the row are kept when the event does not carry an expanded product.
func (d *Domain) HandlePlanEvent(ctx context.Context, snap model.Snapshot) error {
	plan := model.PlanFromSnapshot(d.gatewayID, snap)

	existing, err := d.planDB.FindByReference(ctx, plan.Reference)
	if err != nil {
		return fmt.Errorf("find plan: %w", err)
	}
	if existing != nil {
		plan.ID = existing.ID
		if plan.Name == "" {
			plan.Name = existing.Name
		}
		if plan.Features == nil {
			plan.Features = existing.Features
		}
	}

	if err := d.planDB.Upsert(ctx, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// HandlePlanDeleted removes a processor plan.
func (d *Domain) HandlePlanDeleted(ctx context.Context, snap model.Snapshot) error {
	if err := d.planDB.DeleteByReference(ctx, snap.String("id")); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// HandleProductEvent copies product details onto every plan of the product.
func (d *Domain) HandleProductEvent(ctx context.Context, snap model.Snapshot) error {
	plans, err := d.planDB.ListByProduct(ctx, snap.String("id"))
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}

	for _, plan := range plans {
		plan.ApplyProduct(snap)
		if err := d.planDB.Upsert(ctx, plan); err != nil {
			return fmt.Errorf("save plan %s: %w", plan.Reference, err)
		}
	}
	return nil
}

// SyncPlans backfills the plan catalogue from the processor.
func (d *Domain) SyncPlans(ctx context.Context) (int, error) {
	products := make(map[string]model.Snapshot)
	err := d.processor.ListProducts(ctx, func(product model.Snapshot) error {
		products[product.String("id")] = product
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	synced := 0
	err = d.processor.ListPlans(ctx, func(snap model.Snapshot) error {
		plan := model.PlanFromSnapshot(d.gatewayID, snap)
		if product, ok := products[plan.ProductReference]; ok {
			plan.ApplyProduct(product)
		}

		existing, err := d.planDB.FindByReference(ctx, plan.Reference)
		if err != nil {
			return fmt.Errorf("find plan %s: %w", plan.Reference, err)
		}
		if existing != nil {
			plan.ID = existing.ID
		}

		if err := d.planDB.Upsert(ctx, plan); err != nil {
			return fmt.Errorf("save plan %s: %w", plan.Reference, err)
		}
		synced++
		return nil
	})
	if err != nil {
		return synced, fmt.Errorf("sync plans: %w", err)
	}

	d.logger.Info("plans synced", zap.Int("count", synced))
	return synced, nil
}
