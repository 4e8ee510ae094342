package adminhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/invoice"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"go.uber.org/zap"
)

// SyncResponse reports how many objects a backfill touched.
type SyncResponse struct {
	GatewayID int64 `json:"gateway_id"`
	Synced    int   `json:"synced"`
}

// AdminHandler exposes operator backfills.
type AdminHandler struct {
	gateways *gateway.Registry
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(gateways *gateway.Registry, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{gateways: gateways, logger: logger}
}

// RegisterRoutes registers admin routes. Callers guard the group with role checks.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	gw := r.Group("/gateways/:gateway_id")
	{
		gw.POST("/sync/plans", h.SyncPlans)
		gw.POST("/sync/payment-methods", h.SyncPaymentMethods)
		gw.POST("/subscriptions/:subscription_id/sync-invoices", h.SyncInvoices)
	}
}

// SyncPlans handles POST /admin/gateways/:gateway_id/sync/plans.
//
//	@Summary	Backfill the plan catalogue
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		gateway_id	path		int	true	"Gateway ID"
//	@Success	200			{object}	SyncResponse
//	@Router		/admin/gateways/{gateway_id}/sync/plans [post]
func (h *AdminHandler) SyncPlans(c *gin.Context) {
	h.sync(c, "plans", func(ctx context.Context, id int64) (int, error) {
		g, err := h.gateways.Subscription(id)
		if err != nil {
			return 0, err
		}
		return g.SyncPlans(ctx)
	})
}

// SyncPaymentMethods handles POST /admin/gateways/:gateway_id/sync/payment-methods.
//
//	@Summary	Backfill stored payment methods
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		gateway_id	path		int	true	"Gateway ID"
//	@Success	200			{object}	SyncResponse
//	@Router		/admin/gateways/{gateway_id}/sync/payment-methods [post]
func (h *AdminHandler) SyncPaymentMethods(c *gin.Context) {
	h.sync(c, "payment_methods", func(ctx context.Context, id int64) (int, error) {
		g, err := h.gateways.PaymentMethods(id)
		if err != nil {
			return 0, err
		}
		return g.SyncPaymentMethods(ctx)
	})
}

// SyncInvoices handles POST /admin/gateways/:gateway_id/subscriptions/:subscription_id/sync-invoices.
//
//	@Summary	Backfill the invoices of a subscription
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		gateway_id		path		int	true	"Gateway ID"
//	@Param		subscription_id	path		int	true	"Subscription ID"
//	@Success	200				{object}	SyncResponse
//	@Router		/admin/gateways/{gateway_id}/subscriptions/{subscription_id}/sync-invoices [post]
func (h *AdminHandler) SyncInvoices(c *gin.Context) {
	subscriptionID, err := strconv.ParseInt(c.Param("subscription_id"), 10, 64)
	if err != nil || subscriptionID <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Code: "invalid_id", Message: "Invalid subscription_id"})
		return
	}

	h.sync(c, "invoices", func(ctx context.Context, id int64) (int, error) {
		g, err := h.gateways.Subscription(id)
		if err != nil {
			return 0, err
		}
		return g.SyncInvoices(ctx, subscriptionID)
	})
}

func (h *AdminHandler) sync(c *gin.Context, what string, fn func(ctx context.Context, gatewayID int64) (int, error)) {
	gatewayID, err := strconv.ParseInt(c.Param("gateway_id"), 10, 64)
	if err != nil || gatewayID <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Code: "invalid_id", Message: "Invalid gateway_id"})
		return
	}

	n, err := fn(c.Request.Context(), gatewayID)
	if err != nil {
		h.logger.Error("admin sync failed",
			zap.String("sync", what),
			zap.Int64("gateway_id", gatewayID),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, gateway.ErrGatewayNotFound):
			c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "gateway_not_found", Message: "Gateway not found"})
		case errors.Is(err, invoice.ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "subscription_not_found", Message: "Subscription not found"})
		case errors.Is(err, gateway.ErrNotSupported):
			c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Code: "not_supported", Message: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, model.ErrorResponse{Code: "sync_failed", Message: err.Error()})
		}
		return
	}

	h.logger.Info("admin sync finished",
		zap.String("sync", what),
		zap.Int64("gateway_id", gatewayID),
		zap.Int("synced", n),
	)
	c.JSON(http.StatusOK, SyncResponse{GatewayID: gatewayID, Synced: n})
}

// Compile-time check
var _ inbound.AdminHttpPort = (*AdminHandler)(nil)
