// Package stripe binds the processor port to the Stripe API.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
	"go.uber.org/zap"
)

// Config holds the Stripe settings of one gateway.
type Config struct {
	GatewayID         int64
	SecretKey         string
	APIURL            string
	MaxNetworkRetries int64

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Processor implements outbound.ProcessorPort for one Stripe account.
type Processor struct {
	cfg     Config
	api     *client.API
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewProcessor creates a Stripe client bound to cfg.SecretKey. m is optional.
func NewProcessor(cfg Config, httpClient *http.Client, m *metrics.Metrics, logger *zap.Logger) *Processor {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	logger = logger.With(zap.Int64("gateway_id", cfg.GatewayID))

	backendCfg := &stripego.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripego.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripego.String(cfg.APIURL)
	}

	p := &Processor{
		cfg:     cfg,
		api:     client.New(cfg.SecretKey, stripego.NewBackendsWithConfig(backendCfg)),
		metrics: m,
		logger:  logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        fmt.Sprintf("stripe-%d", cfg.GatewayID),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("processor circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.SetBreakerState(cfg.GatewayID, int(to))
			}
		},
	})
	return p
}

// isSuccessful keeps answers from a healthy API out of the failure count.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var stripeErr *stripego.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < http.StatusInternalServerError &&
		stripeErr.HTTPStatusCode != http.StatusTooManyRequests
}

// call runs fn through the breaker, records metrics and translates errors.
func (p *Processor) call(op string, fn func() (any, error)) (any, error) {
	start := time.Now()
	res, err := p.breaker.Execute(fn)
	if p.metrics != nil {
		p.metrics.RecordProcessorCall(p.cfg.GatewayID, op, callOutcome(err), time.Since(start))
	}
	if err != nil {
		return nil, translateError(op, err)
	}
	return res, nil
}

func callOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "open"
	}
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripego.ErrorCodeResourceMissing:
			return "missing"
		case stripeErr.Type == stripego.ErrorTypeCard || stripeErr.Code != "":
			return "declined"
		}
	}
	return "error"
}

// translateError maps Stripe errors onto the processor port's error taxonomy.
func translateError(op string, err error) error {
	var stripeErr *stripego.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe %s: %w", op, err)
	}

	if stripeErr.Code == stripego.ErrorCodeResourceMissing {
		if stripeErr.Param == "customer" {
			return fmt.Errorf("stripe %s: %w: %s", op, outbound.ErrCustomerDeleted, stripeErr.Msg)
		}
		return fmt.Errorf("stripe %s: %w: %s", op, outbound.ErrResourceMissing, stripeErr.Msg)
	}

	if stripeErr.Code == "" && stripeErr.DeclineCode == "" && stripeErr.Type != stripego.ErrorTypeCard {
		return fmt.Errorf("stripe %s: %w", op, err)
	}

	decline := &outbound.DeclineError{
		Type:        string(stripeErr.Type),
		Code:        string(stripeErr.Code),
		DeclineCode: string(stripeErr.DeclineCode),
		Message:     stripeErr.Msg,
	}
	if stripeErr.PaymentIntent != nil {
		decline.Intent, _ = model.SnapshotFrom(stripeErr.PaymentIntent)
	}
	return decline
}

// snapshot converts an API object into a snapshot, preferring the raw response body.
func snapshot(res stripego.APIResource, v any) (model.Snapshot, error) {
	if res.LastResponse != nil && len(res.LastResponse.RawJSON) > 0 {
		var snap model.Snapshot
		if err := json.Unmarshal(res.LastResponse.RawJSON, &snap); err == nil {
			return snap, nil
		}
	}
	return model.SnapshotFrom(v)
}

func withKey(params *stripego.Params, ctx context.Context, idempotencyKey string) {
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
}

// --- Customers ---

func (p *Processor) CreateCustomer(ctx context.Context, params *outbound.CustomerParams, idempotencyKey string) (model.Snapshot, error) {
	cp := &stripego.CustomerParams{Metadata: params.Metadata}
	if params.Email != "" {
		cp.Email = stripego.String(params.Email)
	}
	if params.Description != "" {
		cp.Description = stripego.String(params.Description)
	}
	withKey(&cp.Params, ctx, idempotencyKey)

	res, err := p.call("create_customer", func() (any, error) { return p.api.Customers.New(cp) })
	if err != nil {
		return nil, err
	}
	c := res.(*stripego.Customer)
	return snapshot(c.APIResource, c)
}

// RetrieveCustomer returns ErrCustomerDeleted for deleted or unknown customers.
func (p *Processor) RetrieveCustomer(ctx context.Context, reference string) (model.Snapshot, error) {
	cp := &stripego.CustomerParams{}
	cp.Context = ctx

	res, err := p.call("retrieve_customer", func() (any, error) { return p.api.Customers.Get(reference, cp) })
	if err != nil {
		if errors.Is(err, outbound.ErrResourceMissing) {
			return nil, fmt.Errorf("%w: %s", outbound.ErrCustomerDeleted, reference)
		}
		return nil, err
	}
	c := res.(*stripego.Customer)
	if c.Deleted {
		return nil, fmt.Errorf("%w: %s", outbound.ErrCustomerDeleted, reference)
	}
	return snapshot(c.APIResource, c)
}

func (p *Processor) ListCustomers(ctx context.Context, fn func(model.Snapshot) error) error {
	lp := &stripego.CustomerListParams{}
	lp.Context = ctx

	it := p.api.Customers.List(lp)
	for it.Next() {
		snap, err := model.SnapshotFrom(it.Customer())
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
	return p.listErr("list_customers", it.Err())
}

func (p *Processor) ListPaymentMethods(ctx context.Context, customerReference string, fn func(model.Snapshot) error) error {
	lp := &stripego.PaymentMethodListParams{Customer: stripego.String(customerReference)}
	lp.Context = ctx

	it := p.api.PaymentMethods.List(lp)
	for it.Next() {
		snap, err := model.SnapshotFrom(it.PaymentMethod())
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
	return p.listErr("list_payment_methods", it.Err())
}

// listErr records a paginated listing. Listings bypass the breaker since
// their pages are fetched lazily by the iterator.
func (p *Processor) listErr(op string, err error) error {
	if p.metrics != nil {
		p.metrics.RecordProcessorCall(p.cfg.GatewayID, op, callOutcome(err), 0)
	}
	if err != nil {
		return translateError(op, err)
	}
	return nil
}

// --- Payment intents ---

func intentParams(params *outbound.PaymentIntentParams) *stripego.PaymentIntentParams {
	ip := &stripego.PaymentIntentParams{}
	if params.Amount > 0 {
		ip.Amount = stripego.Int64(params.Amount)
	}
	if params.Currency != "" {
		ip.Currency = stripego.String(strings.ToLower(params.Currency))
	}
	if params.Customer != "" {
		ip.Customer = stripego.String(params.Customer)
	}
	if params.Description != "" {
		ip.Description = stripego.String(params.Description)
	}
	if params.PaymentMethod != "" {
		ip.PaymentMethod = stripego.String(params.PaymentMethod)
	}
	if params.CaptureMethod != "" {
		ip.CaptureMethod = stripego.String(params.CaptureMethod)
	}
	for k, v := range params.Metadata {
		ip.AddMetadata(k, v)
	}
	return ip
}

func (p *Processor) CreatePaymentIntent(ctx context.Context, params *outbound.PaymentIntentParams, idempotencyKey string) (model.Snapshot, error) {
	ip := intentParams(params)
	withKey(&ip.Params, ctx, idempotencyKey)

	res, err := p.call("create_payment_intent", func() (any, error) { return p.api.PaymentIntents.New(ip) })
	if err != nil {
		return nil, err
	}
	pi := res.(*stripego.PaymentIntent)
	return snapshot(pi.APIResource, pi)
}

func (p *Processor) UpdatePaymentIntent(ctx context.Context, reference string, params *outbound.PaymentIntentParams, idempotencyKey string) (model.Snapshot, error) {
	ip := intentParams(params)
	withKey(&ip.Params, ctx, idempotencyKey)

	res, err := p.call("update_payment_intent", func() (any, error) { return p.api.PaymentIntents.Update(reference, ip) })
	if err != nil {
		return nil, err
	}
	pi := res.(*stripego.PaymentIntent)
	return snapshot(pi.APIResource, pi)
}

func (p *Processor) ConfirmPaymentIntent(ctx context.Context, reference, returnURL, idempotencyKey string) (model.Snapshot, error) {
	cp := &stripego.PaymentIntentConfirmParams{}
	if returnURL != "" {
		cp.ReturnURL = stripego.String(returnURL)
	}
	withKey(&cp.Params, ctx, idempotencyKey)

	res, err := p.call("confirm_payment_intent", func() (any, error) { return p.api.PaymentIntents.Confirm(reference, cp) })
	if err != nil {
		return nil, err
	}
	pi := res.(*stripego.PaymentIntent)
	return snapshot(pi.APIResource, pi)
}

func (p *Processor) CapturePaymentIntent(ctx context.Context, reference, idempotencyKey string) (model.Snapshot, error) {
	cp := &stripego.PaymentIntentCaptureParams{}
	withKey(&cp.Params, ctx, idempotencyKey)

	res, err := p.call("capture_payment_intent", func() (any, error) { return p.api.PaymentIntents.Capture(reference, cp) })
	if err != nil {
		return nil, err
	}
	pi := res.(*stripego.PaymentIntent)
	return snapshot(pi.APIResource, pi)
}

func (p *Processor) RetrievePaymentIntent(ctx context.Context, reference string) (model.Snapshot, error) {
	ip := &stripego.PaymentIntentParams{}
	ip.Context = ctx

	res, err := p.call("retrieve_payment_intent", func() (any, error) { return p.api.PaymentIntents.Get(reference, ip) })
	if err != nil {
		return nil, err
	}
	pi := res.(*stripego.PaymentIntent)
	return snapshot(pi.APIResource, pi)
}

func (p *Processor) CreateRefund(ctx context.Context, params *outbound.RefundParams, idempotencyKey string) (model.Snapshot, error) {
	rp := &stripego.RefundParams{Metadata: params.Metadata}
	if params.Charge != "" {
		rp.Charge = stripego.String(params.Charge)
	} else {
		rp.PaymentIntent = stripego.String(params.PaymentIntent)
	}
	if params.Amount > 0 {
		rp.Amount = stripego.Int64(params.Amount)
	}
	withKey(&rp.Params, ctx, idempotencyKey)

	res, err := p.call("create_refund", func() (any, error) { return p.api.Refunds.New(rp) })
	if err != nil {
		return nil, err
	}
	r := res.(*stripego.Refund)
	return snapshot(r.APIResource, r)
}

// --- Subscriptions ---

// RetrieveSubscription expands the latest invoice, which status derivation reads.
func (p *Processor) RetrieveSubscription(ctx context.Context, reference string) (model.Snapshot, error) {
	sp := &stripego.SubscriptionParams{}
	sp.Context = ctx
	sp.AddExpand("latest_invoice")

	res, err := p.call("retrieve_subscription", func() (any, error) { return p.api.Subscriptions.Get(reference, sp) })
	if err != nil {
		return nil, err
	}
	s := res.(*stripego.Subscription)
	return snapshot(s.APIResource, s)
}

func (p *Processor) SaveSubscription(ctx context.Context, reference string, params *outbound.SubscriptionUpdateParams, idempotencyKey string) (model.Snapshot, error) {
	item := &stripego.SubscriptionItemsParams{
		ID:   stripego.String(params.ItemID),
		Plan: stripego.String(params.Plan),
	}
	if params.Quantity > 0 {
		item.Quantity = stripego.Int64(params.Quantity)
	}

	sp := &stripego.SubscriptionParams{
		Items:         []*stripego.SubscriptionItemsParams{item},
		ProrationDate: params.ProrationDate,
	}
	if params.Prorate != nil {
		sp.ProrationBehavior = stripego.String(prorationBehavior(*params.Prorate))
	}
	if params.BillingCycleAnchorNow {
		sp.BillingCycleAnchorNow = stripego.Bool(true)
	}
	withKey(&sp.Params, ctx, idempotencyKey)

	res, err := p.call("save_subscription", func() (any, error) { return p.api.Subscriptions.Update(reference, sp) })
	if err != nil {
		return nil, err
	}
	s := res.(*stripego.Subscription)
	return snapshot(s.APIResource, s)
}

func prorationBehavior(prorate bool) string {
	if prorate {
		return "create_prorations"
	}
	return "none"
}

// --- Invoices ---

func (p *Processor) ListInvoices(ctx context.Context, filter outbound.InvoiceFilter, fn func(model.Snapshot) error) error {
	lp := &stripego.InvoiceListParams{}
	lp.Context = ctx
	if filter.Customer != "" {
		lp.Customer = stripego.String(filter.Customer)
	}
	if filter.Subscription != "" {
		lp.Subscription = stripego.String(filter.Subscription)
	}
	if filter.Status != "" {
		lp.Status = stripego.String(filter.Status)
	}

	it := p.api.Invoices.List(lp)
	for it.Next() {
		snap, err := model.SnapshotFrom(it.Invoice())
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
	return p.listErr("list_invoices", it.Err())
}

func (p *Processor) RetrieveInvoice(ctx context.Context, reference string) (model.Snapshot, error) {
	ip := &stripego.InvoiceParams{}
	ip.Context = ctx

	res, err := p.call("retrieve_invoice", func() (any, error) { return p.api.Invoices.Get(reference, ip) })
	if err != nil {
		return nil, err
	}
	inv := res.(*stripego.Invoice)
	return snapshot(inv.APIResource, inv)
}

func (p *Processor) PayInvoice(ctx context.Context, reference, idempotencyKey string) (model.Snapshot, error) {
	pp := &stripego.InvoicePayParams{}
	withKey(&pp.Params, ctx, idempotencyKey)

	res, err := p.call("pay_invoice", func() (any, error) { return p.api.Invoices.Pay(reference, pp) })
	if err != nil {
		return nil, err
	}
	inv := res.(*stripego.Invoice)
	return snapshot(inv.APIResource, inv)
}

func (p *Processor) CreateInvoice(ctx context.Context, customerReference, subscriptionReference, idempotencyKey string) (model.Snapshot, error) {
	ip := &stripego.InvoiceParams{Customer: stripego.String(customerReference)}
	if subscriptionReference != "" {
		ip.Subscription = stripego.String(subscriptionReference)
	}
	withKey(&ip.Params, ctx, idempotencyKey)

	res, err := p.call("create_invoice", func() (any, error) { return p.api.Invoices.New(ip) })
	if err != nil {
		return nil, err
	}
	inv := res.(*stripego.Invoice)
	return snapshot(inv.APIResource, inv)
}

func (p *Processor) PreviewUpcomingInvoice(ctx context.Context, params *outbound.UpcomingInvoiceParams) (model.Snapshot, error) {
	up := &stripego.InvoiceUpcomingParams{
		Customer:     stripego.String(params.Customer),
		Subscription: stripego.String(params.Subscription),
		SubscriptionItems: []*stripego.SubscriptionItemsParams{{
			ID:   stripego.String(params.ItemID),
			Plan: stripego.String(params.Plan),
		}},
	}
	if params.BillingCycleAnchorNow {
		up.SubscriptionBillingCycleAnchorNow = stripego.Bool(true)
	}
	up.Context = ctx

	res, err := p.call("preview_upcoming_invoice", func() (any, error) { return p.api.Invoices.Upcoming(up) })
	if err != nil {
		return nil, err
	}
	inv := res.(*stripego.Invoice)
	return snapshot(inv.APIResource, inv)
}

// --- Catalogue ---

func (p *Processor) ListPlans(ctx context.Context, fn func(model.Snapshot) error) error {
	lp := &stripego.PlanListParams{}
	lp.Context = ctx

	it := p.api.Plans.List(lp)
	for it.Next() {
		snap, err := model.SnapshotFrom(it.Plan())
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
	return p.listErr("list_plans", it.Err())
}

func (p *Processor) ListProducts(ctx context.Context, fn func(model.Snapshot) error) error {
	lp := &stripego.ProductListParams{}
	lp.Context = ctx

	it := p.api.Products.List(lp)
	for it.Next() {
		snap, err := model.SnapshotFrom(it.Product())
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
	return p.listErr("list_products", it.Err())
}

// Compile-time check
var _ outbound.ProcessorPort = (*Processor)(nil)
