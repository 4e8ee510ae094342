package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

// ResolveCustomer returns the processor customer of a user on this gateway.
// A customer the processor reports as deleted is purged and recreated once.
func (d *chargeDomain) ResolveCustomer(ctx context.Context, userID int64, email string) (*model.CustomerRecord, error) {
	record, err := d.customerDB.FindByUser(ctx, userID, d.cfg.GatewayID)
	if err != nil {
		return nil, fmt.Errorf("%w: find customer: %v", ErrCustomer, err)
	}
	if record == nil {
		return d.createCustomer(ctx, userID, email, "")
	}

	_, err = d.processor.RetrieveCustomer(ctx, record.Reference)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, outbound.ErrCustomerDeleted):
		d.logger.Warn("processor customer deleted, recreating",
			zap.Int64("user_id", userID),
			zap.String("reference", record.Reference),
		)
		if err := d.customerDB.Delete(ctx, record.ID); err != nil {
			return nil, fmt.Errorf("%w: purge customer: %v", ErrCustomer, err)
		}
		return d.createCustomer(ctx, userID, email, record.Reference)
	default:
		return nil, fmt.Errorf("%w: retrieve %s: %v", ErrCustomer, record.Reference, err)
	}
}

// createCustomer creates the processor customer and its local record.
// replaces is the reference of a purged customer, if any, so the recreate
// does not collide with the idempotency key of the original create.
func (d *chargeDomain) createCustomer(ctx context.Context, userID int64, email, replaces string) (*model.CustomerRecord, error) {
	key := IdempotencyKey("customer", strconv.FormatInt(d.cfg.GatewayID, 10), strconv.FormatInt(userID, 10))
	if replaces != "" {
		key = IdempotencyKey(key, "after", replaces)
	}

	snap, err := d.processor.CreateCustomer(ctx, &outbound.CustomerParams{
		Email:    email,
		Metadata: map[string]string{"userId": strconv.FormatInt(userID, 10)},
	}, key)
	if err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrCustomer, err)
	}

	record := &model.CustomerRecord{
		UserID:       userID,
		GatewayID:    d.cfg.GatewayID,
		Reference:    snap.String("id"),
		ResponseData: snap,
	}
	if err := d.customerDB.Create(ctx, record); err != nil {
		if !errors.Is(err, outbound.ErrDuplicate) {
			return nil, fmt.Errorf("%w: save: %v", ErrCustomer, err)
		}
		// A concurrent request stored the customer first.
		existing, findErr := d.customerDB.FindByUser(ctx, userID, d.cfg.GatewayID)
		if findErr != nil || existing == nil {
			return nil, fmt.Errorf("%w: save: %v", ErrCustomer, err)
		}
		return existing, nil
	}

	d.logger.Info("processor customer created",
		zap.Int64("user_id", userID),
		zap.String("reference", record.Reference),
	)
	return record, nil
}

func (d *chargeDomain) HandleCustomerDeleted(ctx context.Context, customer model.Snapshot) error {
	record, err := d.customerDB.FindByReference(ctx, customer.String("id"))
	if err != nil {
		return fmt.Errorf("find customer: %w", err)
	}
	if record == nil {
		return nil
	}
	if err := d.customerDB.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	d.logger.Info("customer purged", zap.String("reference", record.Reference))
	return nil
}
