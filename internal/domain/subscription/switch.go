package subscription

import (
	"context"
	"fmt"
	"strconv"

	"github.com/uniedit/paysync/internal/domain/currency"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

// --- Plan Switching ---

// SwitchPlan replaces the plan of the subscription's single line item.
// With InvoiceNow set and no running trial an immediate invoice is attempted;
// a failure there is only logged since the processor may have invoiced already.
func (d *Domain) SwitchPlan(ctx context.Context, subscriptionID int64, req *model.SwitchPlanRequest) (*model.Subscription, error) {
	sub, plan, err := d.loadSwitch(ctx, subscriptionID, req.PlanID)
	if err != nil {
		return nil, err
	}

	remote, err := d.processor.RetrieveSubscription(ctx, sub.Reference)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription: %w", err)
	}
	item, err := lineItem(remote)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity, _ = item.Int64("quantity")
	}
	if quantity <= 0 {
		quantity = 1
	}

	params := &outbound.SubscriptionUpdateParams{
		ItemID:                item.String("id"),
		Plan:                  plan.Reference,
		Quantity:              quantity,
		Prorate:               req.Prorate,
		BillingCycleAnchorNow: req.BillingCycleAnchorNow,
		ProrationDate:         req.ProrationDate,
	}
	key := fmt.Sprintf("%s:switch:%s:%s", sub.Reference, plan.Reference, strconv.FormatInt(sub.UpdatedAt.Unix(), 10))

	saved, err := d.processor.SaveSubscription(ctx, sub.Reference, params, key)
	if err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	d.apply(ctx, sub, saved)
	sub.PlanID = &plan.ID
	sub.Quantity = quantity
	if err := d.subDB.UpdateReconciled(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	if req.InvoiceNow && !sub.IsOnTrial(d.now()) {
		customer := saved.String("customer")
		if _, err := d.processor.CreateInvoice(ctx, customer, sub.Reference, key+":invoice"); err != nil {
			d.logger.Info("immediate invoice not created",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("subscription plan switched",
		zap.Int64("subscription_id", sub.ID),
		zap.String("plan", plan.Reference),
		zap.Int64("quantity", quantity),
	)
	return sub, nil
}

// PreviewSwitchCost previews the upcoming invoice for swapping the
// subscription onto planID with the billing cycle anchored now.
func (d *Domain) PreviewSwitchCost(ctx context.Context, subscriptionID, planID int64) (*model.SwitchCostResponse, error) {
	sub, plan, err := d.loadSwitch(ctx, subscriptionID, planID)
	if err != nil {
		return nil, err
	}

	remote, err := d.processor.RetrieveSubscription(ctx, sub.Reference)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription: %w", err)
	}
	item, err := lineItem(remote)
	if err != nil {
		return nil, err
	}

	preview, err := d.processor.PreviewUpcomingInvoice(ctx, &outbound.UpcomingInvoiceParams{
		Customer:              remote.String("customer"),
		Subscription:          sub.Reference,
		ItemID:                item.String("id"),
		Plan:                  plan.Reference,
		BillingCycleAnchorNow: true,
	})
	if err != nil {
		return nil, fmt.Errorf("preview upcoming invoice: %w", err)
	}

	total, _ := preview.Int64("total")
	code := preview.String("currency")
	return &model.SwitchCostResponse{
		Amount:   currency.FromMinorUnitsOrRaw(total, code),
		Currency: code,
	}, nil
}

func (d *Domain) loadSwitch(ctx context.Context, subscriptionID, planID int64) (*model.Subscription, *model.Plan, error) {
	sub, err := d.subDB.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, nil, fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return nil, nil, ErrSubscriptionNotFound
	}
	if sub.GatewayID != d.gatewayID {
		return nil, nil, ErrGatewayMismatch
	}

	plan, err := d.planDB.FindByID(ctx, planID)
	if err != nil {
		return nil, nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, nil, ErrPlanNotFound
	}
	return sub, plan, nil
}

func lineItem(remote model.Snapshot) (model.Snapshot, error) {
	items := remote.Objects("items", "data")
	if len(items) == 0 {
		return nil, ErrNoLineItem
	}
	return items[0], nil
}
