package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/uniedit/paysync/cmd/server/docs" // swagger docs
	adminhttp "github.com/uniedit/paysync/internal/adapter/inbound/http/admin"
	checkouthttp "github.com/uniedit/paysync/internal/adapter/inbound/http/checkout"
	webhookhttp "github.com/uniedit/paysync/internal/adapter/inbound/http/webhook"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/maintenance"
	"github.com/uniedit/paysync/internal/infra/config"
	"github.com/uniedit/paysync/internal/infra/events"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
	"github.com/uniedit/paysync/internal/utils/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Application is the interface of a runnable application.
type Application interface {
	Router() *gin.Engine
	Stop()
}

// Ensure App implements Application interface.
var _ Application = (*App)(nil)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Redis   goredis.UniversalClient
	Metrics *metrics.Metrics
	Hooks   *events.Bus

	// Ports
	RateLimiter      outbound.RateLimiterPort
	IdempotencyCache outbound.IdempotencyCachePort

	// Domains
	Gateways    *gateway.Registry
	Maintenance *maintenance.Domain

	// Guards
	JWTValidator middleware.JWTValidator
	Roles        *middleware.SystemRoleAuthorizer

	// HTTP Handlers
	CheckoutHandler     *checkouthttp.CheckoutHandler
	SubscriptionHandler *checkouthttp.SubscriptionHandler
	WebhookHandler      *webhookhttp.WebhookHandler
	AdminHandler        *adminhttp.AdminHandler
}

// App represents the application.
type App struct {
	config  *config.Config
	deps    *Dependencies
	cleanup func()
	router  *gin.Engine
	logger  *zap.Logger
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		config:  cfg,
		deps:    deps,
		cleanup: cleanup,
		logger:  deps.Logger,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	switch a.config.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(a.config.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	if a.config.Metrics.Enabled {
		r.Use(middleware.Metrics(a.deps.Metrics))
	}
	r.Use(middleware.CORS(middleware.CORSConfig{AllowOrigins: a.config.CORS.AllowOrigins}))

	// Health check endpoint
	r.GET("/health", a.health)

	// Prometheus scrape endpoint
	if a.config.Metrics.Enabled {
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// health reports whether the database answers.
func (a *App) health(c *gin.Context) {
	sqlDB, err := a.deps.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// registerRoutes registers all routes.
func (a *App) registerRoutes() {
	deps := a.deps
	rl := a.config.RateLimit

	// Webhook routes (no auth required, uses signature verification)
	webhookRouter := a.router.Group("/", middleware.RateLimitByIP(deps.RateLimiter, rl.WebhookLimit, rl.WebhookWindow, a.logger))
	deps.WebhookHandler.RegisterRoutes(webhookRouter)

	// Protected routes (requires auth)
	v1 := a.router.Group("/api/v1", middleware.RequireAuth(deps.JWTValidator))

	checkoutRouter := v1.Group("",
		middleware.RateLimitByUser(deps.RateLimiter, rl.CheckoutLimit, rl.CheckoutWindow, a.logger),
		middleware.Idempotency(deps.IdempotencyCache, middleware.IdempotencyConfig{TTL: rl.IdempotencyTTL}, a.logger),
	)
	deps.CheckoutHandler.RegisterRoutes(checkoutRouter)
	deps.SubscriptionHandler.RegisterRoutes(checkoutRouter)

	// Admin routes (requires admin or SRE role)
	adminRouter := v1.Group("/admin", middleware.RequireAdminOrSRE(deps.Roles))
	deps.AdminHandler.RegisterRoutes(adminRouter)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Gateways returns the gateway registry.
func (a *App) Gateways() *gateway.Registry {
	return a.deps.Gateways
}

// Maintenance returns the maintenance domain.
func (a *App) Maintenance() *maintenance.Domain {
	return a.deps.Maintenance
}

// Hooks returns the hook bus host listeners register on.
func (a *App) Hooks() *events.Bus {
	return a.deps.Hooks
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
