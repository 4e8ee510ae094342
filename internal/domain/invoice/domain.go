package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uniedit/paysync/internal/domain/currency"
	"github.com/uniedit/paysync/internal/infra/events"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

const (
	defaultLookupAttempts = 5
	defaultLookupDelay    = time.Second
)

// Config holds invoice reconciliation settings of one gateway.
type Config struct {
	GatewayID int64
	// ChargeImmediately pays automatically collected invoices as soon as they are created.
	ChargeImmediately bool
	// LookupAttempts bounds the subscription lookup of a paid invoice.
	LookupAttempts int
	LookupDelay    time.Duration
}

// Domain reconciles processor invoices into invoices and subscription payments.
type Domain struct {
	cfg       Config
	processor outbound.ProcessorPort
	subDB     outbound.SubscriptionDatabasePort
	invoiceDB outbound.InvoiceDatabasePort
	paymentDB outbound.SubscriptionPaymentDatabasePort
	hooks     outbound.HookPublisherPort
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	logger    *zap.Logger
}

// NewInvoiceDomain creates a new invoice domain service.
func NewInvoiceDomain(
	cfg Config,
	processor outbound.ProcessorPort,
	subDB outbound.SubscriptionDatabasePort,
	invoiceDB outbound.InvoiceDatabasePort,
	paymentDB outbound.SubscriptionPaymentDatabasePort,
	hooks outbound.HookPublisherPort,
	logger *zap.Logger,
) *Domain {
	if cfg.LookupAttempts <= 0 {
		cfg.LookupAttempts = defaultLookupAttempts
	}
	if cfg.LookupDelay <= 0 {
		cfg.LookupDelay = defaultLookupDelay
	}
	return &Domain{
		cfg:       cfg,
		processor: processor,
		subDB:     subDB,
		invoiceDB: invoiceDB,
		paymentDB: paymentDB,
		hooks:     hooks,
		sleep:     sleepContext,
		now:       time.Now,
		logger:    logger.With(zap.Int64("gateway_id", cfg.GatewayID)),
	}
}

// Compile-time interface check
var _ inbound.InvoiceDomain = (*Domain)(nil)

// HandleInvoiceCreated notifies listeners and, when configured, pays an
// automatically collected invoice right away. Payment failures are logged.
func (d *Domain) HandleInvoiceCreated(ctx context.Context, snap model.Snapshot) error {
	if d.hooks != nil {
		if err := d.hooks.Emit(ctx, events.NewInvoiceCreatedEvent(d.cfg.GatewayID, snap)); err != nil {
			if errors.Is(err, events.ErrRejected) {
				d.logger.Info("invoice payment vetoed", zap.String("invoice", snap.String("id")))
				return nil
			}
			d.logger.Warn("invoice created hook failed", zap.Error(err))
		}
	}

	if !d.cfg.ChargeImmediately || snap.Bool("paid") || snap.String("collection_method") != "charge_automatically" {
		return nil
	}

	reference := snap.String("id")
	if _, err := d.processor.PayInvoice(ctx, reference, reference+":pay"); err != nil {
		d.logger.Warn("immediate invoice payment failed",
			zap.String("invoice", reference),
			zap.Error(err),
		)
	}
	return nil
}

// HandleInvoiceSucceeded stores a paid invoice, records its payment and
// advances the subscription's next payment date.
func (d *Domain) HandleInvoiceSucceeded(ctx context.Context, snap model.Snapshot) error {
	if !snap.Bool("paid") {
		return nil
	}

	subRef := snap.String("subscription")
	if subRef == "" {
		d.logger.Debug("paid invoice without subscription ignored", zap.String("invoice", snap.String("id")))
		return nil
	}

	sub, err := d.findSubscription(ctx, subRef)
	if err != nil {
		return err
	}

	if err := d.saveInvoice(ctx, sub, snap); err != nil {
		return err
	}
	if err := d.paymentDB.Upsert(ctx, d.paymentFrom(sub, snap)); err != nil {
		return fmt.Errorf("save subscription payment: %w", err)
	}

	if periodEnd := d.periodEnd(ctx, subRef, snap); periodEnd != nil {
		if sub.NextPaymentDate == nil || periodEnd.After(*sub.NextPaymentDate) {
			sub.NextPaymentDate = periodEnd
			if err := d.subDB.UpdateReconciled(ctx, sub); err != nil {
				return fmt.Errorf("update subscription: %w", err)
			}
		}
	}

	d.logger.Info("invoice payment reconciled",
		zap.Int64("subscription_id", sub.ID),
		zap.String("invoice", snap.String("id")),
	)
	return nil
}

// findSubscription resolves the subscription of a paid invoice. The invoice
// webhook can arrive before the subscription is stored, so the lookup is
// retried a bounded number of times.
func (d *Domain) findSubscription(ctx context.Context, reference string) (*model.Subscription, error) {
	for attempt := 1; attempt <= d.cfg.LookupAttempts; attempt++ {
		sub, err := d.subDB.FindByReference(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("find subscription: %w", err)
		}
		if sub != nil {
			return sub, nil
		}
		if attempt == d.cfg.LookupAttempts {
			break
		}

		d.logger.Debug("subscription not visible yet, retrying",
			zap.String("reference", reference),
			zap.Int("attempt", attempt),
		)
		if err := d.sleep(ctx, d.cfg.LookupDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, reference)
}

// saveInvoice upserts the invoice unless a listener vetoes it.
func (d *Domain) saveInvoice(ctx context.Context, sub *model.Subscription, snap model.Snapshot) error {
	invoice := &model.Invoice{
		SubscriptionID: sub.ID,
		Reference:      snap.String("id"),
		InvoicedAt:     snap.Time("created"),
		InvoiceData:    snap,
	}

	existing, err := d.invoiceDB.FindByReference(ctx, invoice.Reference)
	if err != nil {
		return fmt.Errorf("find invoice: %w", err)
	}
	if existing != nil {
		invoice.ID = existing.ID
		invoice.CreatedAt = existing.CreatedAt
	}

	if d.hooks != nil {
		if err := d.hooks.Emit(ctx, events.NewInvoiceSavingEvent(d.cfg.GatewayID, invoice, sub)); err != nil {
			if errors.Is(err, events.ErrRejected) {
				d.logger.Info("invoice save vetoed", zap.String("invoice", invoice.Reference))
				return nil
			}
			d.logger.Warn("invoice saving hook failed", zap.Error(err))
		}
	}

	if err := d.invoiceDB.Upsert(ctx, invoice); err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

// paymentFrom converts a paid invoice into a subscription payment.
func (d *Domain) paymentFrom(sub *model.Subscription, snap model.Snapshot) *model.SubscriptionPayment {
	amountDue, _ := snap.Int64("amount_due")
	code := snap.String("currency")

	invoicedAt := d.now().UTC()
	if created := snap.Time("created"); created != nil {
		invoicedAt = *created
	}

	return &model.SubscriptionPayment{
		SubscriptionID:   sub.ID,
		InvoiceReference: snap.String("id"),
		Reference:        snap.String("charge"),
		Amount:           currency.FromMinorUnitsOrRaw(amountDue, code),
		Currency:         strings.ToUpper(code),
		InvoicedAt:       invoicedAt,
		Paid:             snap.Bool("paid"),
		PaymentData:      snap,
	}
}

// periodEnd returns the processor's current period end of the subscription,
// falling back to the period of the invoice's first line.
func (d *Domain) periodEnd(ctx context.Context, subRef string, snap model.Snapshot) *time.Time {
	remote, err := d.processor.RetrieveSubscription(ctx, subRef)
	if err == nil {
		if end := remote.Time("current_period_end"); end != nil {
			return end
		}
	} else {
		d.logger.Warn("failed to retrieve subscription for period end",
			zap.String("reference", subRef),
			zap.Error(err),
		)
	}

	lines := snap.Objects("lines", "data")
	if len(lines) == 0 {
		return nil
	}
	return lines[0].Time("period", "end")
}

// SyncInvoices backfills the invoices and payments of a subscription.
func (d *Domain) SyncInvoices(ctx context.Context, subscriptionID int64) (int, error) {
	sub, err := d.subDB.FindByID(ctx, subscriptionID)
	if err != nil {
		return 0, fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return 0, fmt.Errorf("%w: id %d", ErrSubscriptionNotFound, subscriptionID)
	}

	synced := 0
	err = d.processor.ListInvoices(ctx, outbound.InvoiceFilter{Subscription: sub.Reference}, func(snap model.Snapshot) error {
		if err := d.saveInvoice(ctx, sub, snap); err != nil {
			return err
		}
		if snap.Bool("paid") {
			if err := d.paymentDB.Upsert(ctx, d.paymentFrom(sub, snap)); err != nil {
				return fmt.Errorf("save subscription payment: %w", err)
			}
		}
		synced++
		return nil
	})
	if err != nil {
		return synced, fmt.Errorf("sync invoices: %w", err)
	}

	d.logger.Info("invoices synced",
		zap.Int64("subscription_id", sub.ID),
		zap.Int("count", synced),
	)
	return synced, nil
}

// ListPayments returns the payment history of a subscription, newest invoice first.
func (d *Domain) ListPayments(ctx context.Context, subscriptionID int64, page model.PaginationRequest) (*model.PaginatedResponse[*model.SubscriptionPayment], error) {
	page.DefaultPagination()

	payments, total, err := d.paymentDB.ListBySubscription(ctx, subscriptionID, page)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return model.NewPaginatedResponse(payments, total, page.Page, page.PageSize), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
