package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uniedit/paysync/internal/infra/events"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
	"go.uber.org/zap"
)

// Outcome describes what happened to one webhook delivery.
type Outcome string

const (
	OutcomeHandled    Outcome = "handled"
	OutcomeFailed     Outcome = "failed"
	OutcomeUnhandled  Outcome = "unhandled"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeUnverified Outcome = "unverified"
	OutcomeDegraded   Outcome = "degraded"
	OutcomeMalformed  Outcome = "malformed"
)

// Handler reconciles the data object of one event type.
type Handler func(ctx context.Context, object model.Snapshot) error

// SignatureVerifier checks a webhook signature header.
type SignatureVerifier interface {
	VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error
}

// Config holds the webhook settings of one gateway.
type Config struct {
	GatewayID int64
	Secret    string
	Tolerance time.Duration
	// DedupeTTL is how long processed event ids are remembered.
	DedupeTTL time.Duration
}

// Dispatcher verifies webhook deliveries and routes each event type to
// exactly one handler. It never reports failures to the caller: the
// processor would redeliver, and a locally failing handler would fail again.
type Dispatcher struct {
	cfg      Config
	verifier SignatureVerifier
	handlers map[string]Handler
	cache    outbound.WebhookEventCachePort
	hooks    outbound.HookPublisherPort
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewDispatcher creates a new webhook dispatcher. cache, hooks and m are optional.
func NewDispatcher(
	cfg Config,
	verifier SignatureVerifier,
	cache outbound.WebhookEventCachePort,
	hooks outbound.HookPublisherPort,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		verifier: verifier,
		handlers: make(map[string]Handler),
		cache:    cache,
		hooks:    hooks,
		metrics:  m,
		logger:   logger.With(zap.Int64("gateway_id", cfg.GatewayID)),
	}
}

// Register binds a handler to an event type. Registering a type twice panics.
func (d *Dispatcher) Register(eventType string, h Handler) {
	if _, exists := d.handlers[eventType]; exists {
		panic(fmt.Sprintf("webhook: handler for %q already registered", eventType))
	}
	d.handlers[eventType] = h
}

// EventTypes returns the event types with a registered handler.
func (d *Dispatcher) EventTypes() []string {
	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	return types
}

// Handle processes one delivery.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte, signature string) Outcome {
	if d.cfg.Secret == "" || signature == "" {
		d.logger.Warn("webhook accepted without verification",
			zap.Bool("secret_configured", d.cfg.Secret != ""),
			zap.Bool("signature_present", signature != ""),
		)
		return d.record("", OutcomeDegraded)
	}

	if err := d.verifier.VerifyWebhookSignature(payload, signature, d.cfg.Secret, d.cfg.Tolerance); err != nil {
		d.logger.Warn("webhook signature rejected", zap.Error(err))
		return d.record("", OutcomeUnverified)
	}

	var event model.Snapshot
	if err := json.Unmarshal(payload, &event); err != nil || event == nil {
		d.logger.Warn("webhook payload is not a JSON object", zap.Error(err))
		return d.record("", OutcomeMalformed)
	}

	eventType := event.String("type")
	eventID := event.String("id")
	log := d.logger.With(zap.String("event_id", eventID), zap.String("event_type", eventType))

	if d.seen(ctx, eventID, log) {
		log.Info("duplicate webhook skipped")
		return d.record(eventType, OutcomeDuplicate)
	}

	outcome := OutcomeUnhandled
	if handler, ok := d.handlers[eventType]; ok {
		start := time.Now()
		err := d.run(ctx, handler, event.Object("data", "object"))
		if d.metrics != nil {
			d.metrics.RecordWebhookHandler(d.cfg.GatewayID, eventType, time.Since(start))
		}

		if err != nil {
			log.Error("webhook handler failed", zap.Error(err))
			outcome = OutcomeFailed
		} else {
			outcome = OutcomeHandled
			d.remember(ctx, eventID, log)
		}
	} else {
		log.Debug("no handler for webhook event")
	}

	if d.hooks != nil {
		if err := d.hooks.Emit(ctx, events.NewWebhookReceivedEvent(d.cfg.GatewayID, event)); err != nil {
			log.Warn("webhook received hook failed", zap.Error(err))
		}
	}

	return d.record(eventType, outcome)
}

// run calls h and turns a panic into an error.
func (d *Dispatcher) run(ctx context.Context, h Handler, object model.Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, object)
}

func (d *Dispatcher) seen(ctx context.Context, eventID string, log *zap.Logger) bool {
	if d.cache == nil || eventID == "" {
		return false
	}
	seen, err := d.cache.Seen(ctx, d.cfg.GatewayID, eventID)
	if err != nil {
		log.Warn("webhook dedupe lookup failed", zap.Error(err))
		return false
	}
	return seen
}

func (d *Dispatcher) remember(ctx context.Context, eventID string, log *zap.Logger) {
	if d.cache == nil || eventID == "" || d.cfg.DedupeTTL <= 0 {
		return
	}
	if err := d.cache.Remember(ctx, d.cfg.GatewayID, eventID, d.cfg.DedupeTTL); err != nil {
		log.Warn("failed to remember webhook event", zap.Error(err))
	}
}

func (d *Dispatcher) record(eventType string, outcome Outcome) Outcome {
	if d.metrics != nil {
		d.metrics.RecordWebhookEvent(d.cfg.GatewayID, eventType, string(outcome))
	}
	return outcome
}
