package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/invoice"
	"github.com/uniedit/paysync/internal/domain/maintenance"
	"github.com/uniedit/paysync/internal/domain/payment"
	"github.com/uniedit/paysync/internal/domain/subscription"
	"github.com/uniedit/paysync/internal/domain/webhook"

	// Inbound adapters
	adminhttp "github.com/uniedit/paysync/internal/adapter/inbound/http/admin"
	checkouthttp "github.com/uniedit/paysync/internal/adapter/inbound/http/checkout"
	webhookhttp "github.com/uniedit/paysync/internal/adapter/inbound/http/webhook"

	// Ports
	"github.com/uniedit/paysync/internal/port/outbound"

	// Outbound adapters
	"github.com/uniedit/paysync/internal/adapter/outbound/postgres"
	redisadapter "github.com/uniedit/paysync/internal/adapter/outbound/redis"
	"github.com/uniedit/paysync/internal/adapter/outbound/stripe"

	// Infrastructure
	"github.com/uniedit/paysync/internal/infra/cache"
	"github.com/uniedit/paysync/internal/infra/config"
	"github.com/uniedit/paysync/internal/infra/database"
	"github.com/uniedit/paysync/internal/infra/events"
	"github.com/uniedit/paysync/internal/infra/httpclient"
	"github.com/uniedit/paysync/internal/infra/logger"

	// Utils
	"github.com/uniedit/paysync/internal/utils/metrics"
	"github.com/uniedit/paysync/internal/utils/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideMetrics,
	ProvideHookBus,
	wire.Bind(new(outbound.HookPublisherPort), new(*events.Bus)),
)

// ProvideLogger creates the zap logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideDatabase opens the database and migrates the owned tables.
func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}
	return db, func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional: without it
// webhook dedupe, rate limiting and idempotency replay are disabled.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		log.Warn("Redis connection failed, continuing without cache", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideHTTPClient creates the HTTP client shared by processor backends.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(cfg *config.Config) *metrics.Metrics {
	return metrics.New(cfg.Metrics.Namespace)
}

// ProvideHookBus creates the hook bus and registers the built-in listeners.
func ProvideHookBus(log *zap.Logger) *events.Bus {
	bus := events.NewBus(log.Named("hooks"))
	bus.Register(newAuditListener(log))
	return bus
}

// ===== Cache Providers =====

// CacheSet provides the Redis-backed ports.
var CacheSet = wire.NewSet(
	ProvideRateLimiter,
	ProvideIdempotencyCache,
	ProvideWebhookEventCache,
)

// ProvideRateLimiter creates a rate limiter, or nil when limiting is off.
func ProvideRateLimiter(cfg *config.Config, client goredis.UniversalClient) outbound.RateLimiterPort {
	if client == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return redisadapter.NewRateLimiter(client)
}

// ProvideIdempotencyCache creates the idempotency cache, or nil without Redis.
func ProvideIdempotencyCache(client goredis.UniversalClient, m *metrics.Metrics) outbound.IdempotencyCachePort {
	if client == nil {
		return nil
	}
	return redisadapter.NewIdempotencyCache(client, m)
}

// ProvideWebhookEventCache creates the webhook dedupe cache, or nil when
// Redis is missing or dedupe is disabled.
func ProvideWebhookEventCache(cfg *config.Config, client goredis.UniversalClient, m *metrics.Metrics) outbound.WebhookEventCachePort {
	if client == nil || cfg.Webhook.DedupeTTL <= 0 {
		return nil
	}
	return redisadapter.NewWebhookEventCache(client, m)
}

// ===== Outbound Adapter Providers =====

// AdapterSet provides the database adapters.
var AdapterSet = wire.NewSet(
	postgres.NewPaymentIntentAdapter,
	postgres.NewCustomerAdapter,
	postgres.NewPaymentSourceAdapter,
	postgres.NewTransactionAdapter,
	postgres.NewSubscriptionAdapter,
	postgres.NewPlanAdapter,
	postgres.NewInvoiceAdapter,
	postgres.NewSubscriptionPaymentAdapter,
)

// ===== Domain Providers =====

// GatewayDeps are the collaborators shared by every configured gateway.
type GatewayDeps struct {
	HTTPClient     *http.Client
	Hooks          outbound.HookPublisherPort
	EventCache     outbound.WebhookEventCachePort
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	IntentDB       outbound.PaymentIntentDatabasePort
	CustomerDB     outbound.CustomerDatabasePort
	SourceDB       outbound.PaymentSourceDatabasePort
	SubscriptionDB outbound.SubscriptionDatabasePort
	PlanDB         outbound.PlanDatabasePort
	InvoiceDB      outbound.InvoiceDatabasePort
	PaymentDB      outbound.SubscriptionPaymentDatabasePort
}

// DomainSet provides the gateway registry and the maintenance domain.
var DomainSet = wire.NewSet(
	wire.Struct(new(GatewayDeps), "*"),
	ProvideGatewayRegistry,
	maintenance.NewMaintenanceDomain,
)

// ProvideGatewayRegistry builds and registers one gateway per configuration entry.
func ProvideGatewayRegistry(cfg *config.Config, deps GatewayDeps) (*gateway.Registry, error) {
	registry := gateway.NewRegistry()
	for _, gc := range cfg.Gateways {
		if err := registry.Register(newGateway(cfg, gc, deps)); err != nil {
			return nil, err
		}
		deps.Logger.Info("Gateway registered",
			zap.Int64("gateway_id", gc.ID),
			zap.String("name", gc.Name),
			zap.String("variant", gc.Variant),
		)
	}
	return registry, nil
}

// newGateway wires the processor, domains and dispatcher of one gateway.
func newGateway(cfg *config.Config, gc config.GatewayConfig, deps GatewayDeps) gateway.Gateway {
	log := deps.Logger.With(zap.String("gateway", gc.Name))

	processor := stripe.NewProcessor(stripe.Config{
		GatewayID:         gc.ID,
		SecretKey:         gc.SecretKey,
		APIURL:            gc.APIURL,
		MaxNetworkRetries: gc.MaxNetworkRetries,
		BreakerFailures:   gc.BreakerFailures,
		BreakerTimeout:    gc.BreakerTimeout,
	}, deps.HTTPClient, deps.Metrics, log)

	charges := payment.NewChargeDomain(
		payment.Config{GatewayID: gc.ID, ReturnURL: gc.ReturnURL},
		processor, deps.IntentDB, deps.CustomerDB, deps.SourceDB, deps.Hooks, log,
	)
	subscriptions := subscription.NewSubscriptionDomain(gc.ID, processor, deps.SubscriptionDB, deps.PlanDB, log)
	invoices := invoice.NewInvoiceDomain(
		invoice.Config{
			GatewayID:         gc.ID,
			ChargeImmediately: gc.ChargeImmediately,
			LookupAttempts:    cfg.Webhook.LookupAttempts,
			LookupDelay:       cfg.Webhook.LookupDelay,
		},
		processor, deps.SubscriptionDB, deps.InvoiceDB, deps.PaymentDB, deps.Hooks, log,
	)
	dispatcher := webhook.NewDispatcher(
		webhook.Config{
			GatewayID: gc.ID,
			Secret:    gc.WebhookSecret,
			Tolerance: gc.WebhookTolerance,
			DedupeTTL: cfg.Webhook.DedupeTTL,
		},
		processor, deps.EventCache, deps.Hooks, deps.Metrics, log,
	)

	info := gateway.Info{ID: gc.ID, Name: gc.Name}
	if gc.Variant == gateway.VariantBilling {
		return gateway.NewBillingGateway(info, charges, subscriptions, invoices, dispatcher)
	}
	return gateway.NewIntentGateway(info, charges, subscriptions, invoices, dispatcher)
}

// ===== HTTP Providers =====

// HandlerSet provides the HTTP handlers and their guards.
var HandlerSet = wire.NewSet(
	ProvideJWTValidator,
	ProvideSystemRoleAuthorizer,
	checkouthttp.NewCheckoutHandler,
	checkouthttp.NewSubscriptionHandler,
	webhookhttp.NewWebhookHandler,
	adminhttp.NewAdminHandler,
)

// ProvideJWTValidator creates the access token validator.
func ProvideJWTValidator(cfg *config.Config) middleware.JWTValidator {
	return middleware.NewHS256Validator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

// ProvideSystemRoleAuthorizer creates the admin/SRE authorizer.
func ProvideSystemRoleAuthorizer(cfg *config.Config) *middleware.SystemRoleAuthorizer {
	ac := cfg.AccessControl
	return middleware.NewSystemRoleAuthorizer(ac.AdminEmails, ac.SREEmails, ac.AdminUserIDs, ac.SREUserIDs)
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	CacheSet,
	AdapterSet,
	DomainSet,
	HandlerSet,
)
