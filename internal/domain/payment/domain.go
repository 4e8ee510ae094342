package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/uniedit/paysync/internal/domain/currency"
	"github.com/uniedit/paysync/internal/infra/events"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

// ChargeDomain defines the charge, customer and payment method operations of one gateway.
type ChargeDomain interface {
	// AuthorizeOrPurchase creates or updates the processor intent of a
	// transaction, confirms it and classifies the outcome.
	AuthorizeOrPurchase(ctx context.Context, tx *model.Transaction, paymentMethod string, capture bool) (*model.RequestResult, error)

	// Capture captures an authorized intent.
	Capture(ctx context.Context, tx *model.Transaction, reference string) (*model.RequestResult, error)

	// Refund refunds the charge of the intent the transaction references.
	Refund(ctx context.Context, tx *model.Transaction) (*model.RequestResult, error)

	// ResolveCustomer returns the processor customer of a user, creating it when needed.
	ResolveCustomer(ctx context.Context, userID int64, email string) (*model.CustomerRecord, error)

	// HandleIntentEvent stores the latest snapshot of a known intent.
	HandleIntentEvent(ctx context.Context, intent model.Snapshot) error

	// HandleRefundUpdated refreshes the intent a refund belongs to.
	HandleRefundUpdated(ctx context.Context, refund model.Snapshot) error

	// HandleCustomerDeleted purges the local record of a deleted processor customer.
	HandleCustomerDeleted(ctx context.Context, customer model.Snapshot) error

	// HandlePaymentMethodAttached stores a payment method.
	HandlePaymentMethodAttached(ctx context.Context, method model.Snapshot) error

	// HandlePaymentMethodDetached removes a stored payment method.
	HandlePaymentMethodDetached(ctx context.Context, method model.Snapshot) error

	// SyncPaymentMethods re-syncs stored payment methods from the processor's customer list.
	SyncPaymentMethods(ctx context.Context) (int, error)
}

// Config holds per-gateway charge settings.
type Config struct {
	GatewayID int64
	ReturnURL string
}

// chargeDomain implements ChargeDomain.
type chargeDomain struct {
	cfg        Config
	processor  outbound.ProcessorPort
	intentDB   outbound.PaymentIntentDatabasePort
	customerDB outbound.CustomerDatabasePort
	sourceDB   outbound.PaymentSourceDatabasePort
	hooks      outbound.HookPublisherPort
	logger     *zap.Logger
}

// NewChargeDomain creates a new charge domain service.
func NewChargeDomain(
	cfg Config,
	processor outbound.ProcessorPort,
	intentDB outbound.PaymentIntentDatabasePort,
	customerDB outbound.CustomerDatabasePort,
	sourceDB outbound.PaymentSourceDatabasePort,
	hooks outbound.HookPublisherPort,
	logger *zap.Logger,
) ChargeDomain {
	return &chargeDomain{
		cfg:        cfg,
		processor:  processor,
		intentDB:   intentDB,
		customerDB: customerDB,
		sourceDB:   sourceDB,
		hooks:      hooks,
		logger:     logger.With(zap.Int64("gateway_id", cfg.GatewayID)),
	}
}

func (d *chargeDomain) AuthorizeOrPurchase(ctx context.Context, tx *model.Transaction, paymentMethod string, capture bool) (*model.RequestResult, error) {
	customer, err := d.ResolveCustomer(ctx, tx.UserID, tx.Email)
	if err != nil {
		return nil, err
	}

	hash := TransactionHash(tx, d.cfg.GatewayID, customer.ID)
	params, err := d.buildIntentParams(ctx, tx, customer.Reference, paymentMethod)
	if err != nil {
		return nil, err
	}

	record, err := d.intentDB.Find(ctx, d.cfg.GatewayID, customer.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("find payment intent: %w", err)
	}

	var snap model.Snapshot
	// Keyed per payment method: another card is a new request, the same card
	// replays whatever the processor answered for that key.
	if record != nil {
		snap, err = d.processor.UpdatePaymentIntent(ctx, record.Reference, params, IdempotencyKey(hash, "update", paymentMethod))
	} else {
		params.CaptureMethod = outbound.CaptureMethodManual
		if capture {
			params.CaptureMethod = outbound.CaptureMethodAutomatic
		}
		snap, err = d.processor.CreatePaymentIntent(ctx, params, IdempotencyKey(hash))
		record = &model.PaymentIntentRecord{
			GatewayID:       d.cfg.GatewayID,
			CustomerID:      customer.ID,
			TransactionHash: hash,
		}
	}
	if err != nil {
		return d.failure("save intent", err)
	}

	record.Reference = snap.String("id")
	record.IntentData = snap
	if err := d.intentDB.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("save payment intent: %w", err)
	}

	confirmed, err := d.processor.ConfirmPaymentIntent(ctx, record.Reference, d.cfg.ReturnURL, IdempotencyKey(hash, "confirm", paymentMethod))
	if err != nil {
		var decline *outbound.DeclineError
		if errors.As(err, &decline) && decline.Intent != nil {
			d.storeSnapshot(ctx, record, decline.Intent)
		}
		return d.failure("confirm intent", err)
	}
	d.storeSnapshot(ctx, record, confirmed)

	result := Classify(confirmed, d.cfg.ReturnURL)
	d.logger.Info("payment intent confirmed",
		zap.Int64("transaction_id", tx.ID),
		zap.String("reference", record.Reference),
		zap.String("status", confirmed.String("status")),
		zap.Bool("successful", result.Successful),
	)
	return result, nil
}

// Capture settles an authorization. The intent must have been created for tx
// on this gateway; any other reference is reported as not found.
func (d *chargeDomain) Capture(ctx context.Context, tx *model.Transaction, reference string) (*model.RequestResult, error) {
	record, err := d.intentDB.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("find payment intent: %w", err)
	}
	if record == nil || record.GatewayID != d.cfg.GatewayID ||
		record.TransactionHash != TransactionHash(tx, d.cfg.GatewayID, record.CustomerID) {
		d.logger.Warn("capture of an intent not owned by the transaction",
			zap.Int64("transaction_id", tx.ID),
			zap.String("reference", reference),
		)
		return nil, fmt.Errorf("%w: %s", ErrIntentNotFound, reference)
	}

	if _, err := d.processor.RetrievePaymentIntent(ctx, reference); err != nil {
		return d.failure("retrieve intent", err)
	}

	snap, err := d.processor.CapturePaymentIntent(ctx, reference, IdempotencyKey(reference))
	if err != nil {
		return d.failure("capture intent", err)
	}
	d.storeSnapshot(ctx, record, snap)

	return Classify(snap, d.cfg.ReturnURL), nil
}

func (d *chargeDomain) Refund(ctx context.Context, tx *model.Transaction) (*model.RequestResult, error) {
	if tx.Currency == "" {
		return nil, fmt.Errorf("%w: refund without payment currency", ErrNotSupported)
	}

	record, err := d.intentDB.FindByReference(ctx, tx.Reference)
	if err != nil {
		return nil, fmt.Errorf("find payment intent: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrIntentNotFound, tx.Reference)
	}

	amount, err := currency.ToMinorUnits(tx.Amount, tx.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSupported, err)
	}

	params := &outbound.RefundParams{
		Charge:   chargeOf(record.IntentData),
		Amount:   amount,
		Metadata: coreMetadata(tx),
	}
	if params.Charge == "" {
		params.PaymentIntent = record.Reference
	}

	hash := TransactionHash(tx, d.cfg.GatewayID, record.CustomerID)
	refund, err := d.processor.CreateRefund(ctx, params, IdempotencyKey(hash))
	if err != nil {
		return d.failure("create refund", err)
	}

	intent, err := d.processor.RetrievePaymentIntent(ctx, record.Reference)
	if err != nil {
		d.logger.Warn("failed to refresh intent after refund",
			zap.String("reference", record.Reference),
			zap.Error(err),
		)
	} else {
		d.storeSnapshot(ctx, record, intent)
	}

	return Classify(refund, ""), nil
}

// buildIntentParams assembles the outbound request and lets listeners add metadata.
// Listeners see a copy of the transaction; amount, currency, description and
// the core metadata keys are taken from tx and re-asserted after they ran.
func (d *chargeDomain) buildIntentParams(ctx context.Context, tx *model.Transaction, customerRef, paymentMethod string) (*outbound.PaymentIntentParams, error) {
	amount, err := currency.ToMinorUnits(tx.Amount, tx.Currency)
	if err != nil {
		return nil, err
	}
	txCurrency, description := tx.Currency, tx.Description

	core := coreMetadata(tx)
	metadata := make(map[string]string, len(core))
	for k, v := range core {
		metadata[k] = v
	}

	if d.hooks != nil {
		view := *tx
		event := events.NewRequestBuildingEvent(d.cfg.GatewayID, &view, amount, txCurrency, description, metadata)
		if err := d.hooks.Emit(ctx, event); err != nil {
			if errors.Is(err, events.ErrRejected) {
				return nil, ErrRequestRejected
			}
			d.logger.Warn("request building hook failed", zap.Error(err))
		}
		if event.Metadata != nil {
			metadata = event.Metadata
		}
	}

	for k, v := range core {
		metadata[k] = v
	}

	return &outbound.PaymentIntentParams{
		Amount:        amount,
		Currency:      txCurrency,
		Customer:      customerRef,
		Description:   description,
		PaymentMethod: paymentMethod,
		Metadata:      metadata,
	}, nil
}

// storeSnapshot persists the latest processor state of an intent. Failures
// are logged; the remote call already happened.
func (d *chargeDomain) storeSnapshot(ctx context.Context, record *model.PaymentIntentRecord, snap model.Snapshot) {
	record.IntentData = snap
	if err := d.intentDB.Upsert(ctx, record); err != nil {
		d.logger.Error("failed to store intent snapshot",
			zap.String("reference", record.Reference),
			zap.Error(err),
		)
	}
}

// failure recovers structured declines into a result and wraps everything else.
func (d *chargeDomain) failure(op string, err error) (*model.RequestResult, error) {
	var decline *outbound.DeclineError
	if errors.As(err, &decline) {
		d.logger.Info("processor declined request",
			zap.String("op", op),
			zap.String("code", decline.Code),
			zap.String("decline_code", decline.DeclineCode),
		)
		return Declined(decline), nil
	}
	return nil, &GatewayError{Op: op, Err: err}
}

func coreMetadata(tx *model.Transaction) map[string]string {
	m := map[string]string{
		"orderId":              strconv.FormatInt(tx.OrderID, 10),
		"orderNumber":          tx.OrderNumber,
		"transactionId":        strconv.FormatInt(tx.ID, 10),
		"transactionReference": tx.Hash,
	}
	if tx.ClientIP != "" {
		m["clientIp"] = tx.ClientIP
	}
	return m
}

// chargeOf returns the charge of an intent snapshot across API versions.
func chargeOf(intent model.Snapshot) string {
	if charge := intent.String("latest_charge"); charge != "" {
		return charge
	}
	if charges := intent.Objects("charges", "data"); len(charges) > 0 {
		return charges[0].String("id")
	}
	return ""
}
