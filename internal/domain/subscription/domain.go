package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

// Domain reconciles processor subscriptions and plans into local records.
type Domain struct {
	gatewayID int64
	processor outbound.ProcessorPort
	subDB     outbound.SubscriptionDatabasePort
	planDB    outbound.PlanDatabasePort
	now       func() time.Time
	logger    *zap.Logger
}

// NewSubscriptionDomain creates a new subscription domain service.
func NewSubscriptionDomain(
	gatewayID int64,
	processor outbound.ProcessorPort,
	subDB outbound.SubscriptionDatabasePort,
	planDB outbound.PlanDatabasePort,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		gatewayID: gatewayID,
		processor: processor,
		subDB:     subDB,
		planDB:    planDB,
		now:       time.Now,
		logger:    logger.With(zap.Int64("gateway_id", gatewayID)),
	}
}

// Compile-time interface check
var _ inbound.SubscriptionDomain = (*Domain)(nil)

// --- Webhook Handlers ---

// HandleSubscriptionUpdated stores the snapshot, re-derives the status flags
// and follows a plan change. Unknown subscriptions are dropped.
func (d *Domain) HandleSubscriptionUpdated(ctx context.Context, snap model.Snapshot) error {
	sub, err := d.subDB.FindByReference(ctx, snap.String("id"))
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		d.logger.Info("subscription update for unknown subscription dropped", zap.String("reference", snap.String("id")))
		return nil
	}

	d.apply(ctx, sub, snap)
	if err := d.resolvePlan(ctx, sub, snap); err != nil {
		return err
	}

	if err := d.subDB.UpdateReconciled(ctx, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	d.logger.Info("subscription reconciled",
		zap.Int64("subscription_id", sub.ID),
		zap.String("status", sub.Status),
	)
	return nil
}

// HandleSubscriptionExpired marks an ended subscription expired. Unknown
// subscriptions are dropped.
func (d *Domain) HandleSubscriptionExpired(ctx context.Context, snap model.Snapshot) error {
	sub, err := d.subDB.FindByReference(ctx, snap.String("id"))
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		d.logger.Info("subscription expiry for unknown subscription dropped", zap.String("reference", snap.String("id")))
		return nil
	}

	d.apply(ctx, sub, snap)
	if !sub.IsExpired {
		sub.IsExpired = true
		sub.DateExpired = snap.Time("ended_at")
	}
	if sub.DateExpired == nil {
		now := d.now().UTC()
		sub.DateExpired = &now
	}

	if err := d.subDB.UpdateReconciled(ctx, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	d.logger.Info("subscription expired", zap.Int64("subscription_id", sub.ID))
	return nil
}

// apply copies the processor snapshot onto sub and derives its status flags.
func (d *Domain) apply(ctx context.Context, sub *model.Subscription, snap model.Snapshot) {
	sub.SubscriptionData = snap
	sub.Status = snap.String("status")
	if quantity, ok := snap.Int64("quantity"); ok && quantity > 0 {
		sub.Quantity = quantity
	}
	sub.TrialEndsAt = snap.Time("trial_end")

	in := StatusInputFrom(snap)
	if in.Status == model.SubscriptionStatusPastDue && in.LatestInvoiceCreated == nil && !sub.IsSuspended {
		in.LatestInvoiceCreated = d.latestInvoiceCreated(ctx, snap)
	}
	sub.SubscriptionStatus = DeriveStatus(sub.SubscriptionStatus, in)
}

// latestInvoiceCreated fetches the creation time of the subscription's latest
// invoice when the snapshot only carries its id.
func (d *Domain) latestInvoiceCreated(ctx context.Context, snap model.Snapshot) *time.Time {
	reference := snap.String("latest_invoice")
	if reference == "" {
		return nil
	}
	invoice, err := d.processor.RetrieveInvoice(ctx, reference)
	if err != nil {
		d.logger.Warn("failed to retrieve latest invoice",
			zap.String("invoice", reference),
			zap.Error(err),
		)
		return nil
	}
	return invoice.Time("created")
}

// resolvePlan points sub at the local plan of the snapshot. A plan that is
// not known locally leaves the current plan in place.
func (d *Domain) resolvePlan(ctx context.Context, sub *model.Subscription, snap model.Snapshot) error {
	reference := PlanReference(snap)
	if reference == "" {
		return nil
	}

	plan, err := d.planDB.FindByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		d.logger.Warn("subscription plan not found, keeping current plan",
			zap.Int64("subscription_id", sub.ID),
			zap.String("plan", reference),
		)
		return nil
	}

	sub.PlanID = &plan.ID
	return nil
}

// PlanReference returns the plan of a processor subscription, falling back
// to the price of its first line item.
func PlanReference(snap model.Snapshot) string {
	if ref := snap.String("plan"); ref != "" {
		return ref
	}
	items := snap.Objects("items", "data")
	if len(items) == 0 {
		return ""
	}
	if ref := items[0].String("plan"); ref != "" {
		return ref
	}
	return items[0].String("price")
}
