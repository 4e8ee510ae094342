package payment

import (
	"context"
	"fmt"

	"github.com/uniedit/paysync/internal/model"
	"go.uber.org/zap"
)

func (d *chargeDomain) HandleIntentEvent(ctx context.Context, intent model.Snapshot) error {
	record, err := d.intentDB.FindByReference(ctx, intent.String("id"))
	if err != nil {
		return fmt.Errorf("find payment intent: %w", err)
	}
	if record == nil {
		d.logger.Debug("intent event for unknown intent", zap.String("reference", intent.String("id")))
		return nil
	}

	record.IntentData = intent
	if err := d.intentDB.Upsert(ctx, record); err != nil {
		return fmt.Errorf("save payment intent: %w", err)
	}
	return nil
}

func (d *chargeDomain) HandleRefundUpdated(ctx context.Context, refund model.Snapshot) error {
	reference := refund.String("payment_intent")
	if reference == "" {
		return nil
	}

	record, err := d.intentDB.FindByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("find payment intent: %w", err)
	}
	if record == nil {
		return nil
	}

	intent, err := d.processor.RetrievePaymentIntent(ctx, reference)
	if err != nil {
		return fmt.Errorf("retrieve payment intent: %w", err)
	}

	record.IntentData = intent
	if err := d.intentDB.Upsert(ctx, record); err != nil {
		return fmt.Errorf("save payment intent: %w", err)
	}
	return nil
}

func (d *chargeDomain) HandlePaymentMethodAttached(ctx context.Context, method model.Snapshot) error {
	source := model.PaymentSourceFromSnapshot(d.cfg.GatewayID, method)
	if source.CustomerReference == "" {
		return nil
	}

	customer, err := d.customerDB.FindByReference(ctx, source.CustomerReference)
	if err != nil {
		return fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		return nil
	}

	if err := d.sourceDB.Upsert(ctx, source); err != nil {
		return fmt.Errorf("save payment source: %w", err)
	}
	return nil
}

func (d *chargeDomain) HandlePaymentMethodDetached(ctx context.Context, method model.Snapshot) error {
	if err := d.sourceDB.DeleteByReference(ctx, method.String("id")); err != nil {
		return fmt.Errorf("delete payment source: %w", err)
	}
	return nil
}

// SyncPaymentMethods walks every processor customer and stores the payment
// methods of those known locally. It returns the number of methods stored.
func (d *chargeDomain) SyncPaymentMethods(ctx context.Context) (int, error) {
	synced := 0
	err := d.processor.ListCustomers(ctx, func(customer model.Snapshot) error {
		reference := customer.String("id")
		record, err := d.customerDB.FindByReference(ctx, reference)
		if err != nil {
			return fmt.Errorf("find customer %s: %w", reference, err)
		}
		if record == nil {
			return nil
		}

		return d.processor.ListPaymentMethods(ctx, reference, func(method model.Snapshot) error {
			source := model.PaymentSourceFromSnapshot(d.cfg.GatewayID, method)
			if source.CustomerReference == "" {
				source.CustomerReference = reference
			}
			if err := d.sourceDB.Upsert(ctx, source); err != nil {
				return fmt.Errorf("save payment source %s: %w", source.Reference, err)
			}
			synced++
			return nil
		})
	})
	if err != nil {
		return synced, fmt.Errorf("sync payment methods: %w", err)
	}

	d.logger.Info("payment methods synced", zap.Int("count", synced))
	return synced, nil
}
