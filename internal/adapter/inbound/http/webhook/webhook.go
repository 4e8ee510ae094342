package webhookhttp

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/infra/logger"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"go.uber.org/zap"
)

const (
	// SignatureHeader carries the processor's webhook signature.
	SignatureHeader = "Stripe-Signature"

	maxPayloadBytes = 1 << 20
)

// WebhookHandler receives processor webhooks.
type WebhookHandler struct {
	gateways *gateway.Registry
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(gateways *gateway.Registry, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{gateways: gateways, logger: logger}
}

// RegisterRoutes registers webhook routes.
func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhooks/:gateway_id", h.HandleWebhook)
}

// HandleWebhook handles POST /webhooks/:gateway_id. Once the gateway is
// known the delivery is acknowledged with 200 "ok" whatever the outcome, so
// the processor does not redeliver events that would fail the same way.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	gatewayID, err := strconv.ParseInt(c.Param("gateway_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "gateway_not_found", Message: "Gateway not found"})
		return
	}
	g, err := h.gateways.Get(gatewayID)
	if err != nil {
		log.Warn("webhook for unknown gateway", zap.Int64("gateway_id", gatewayID))
		c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "gateway_not_found", Message: "Gateway not found"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		log.Warn("webhook body unreadable",
			zap.Int64("gateway_id", gatewayID),
			zap.Error(err),
		)
		c.String(http.StatusOK, "ok")
		return
	}

	outcome := g.HandleWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	log.Debug("webhook processed",
		zap.Int64("gateway_id", gatewayID),
		zap.String("outcome", string(outcome)),
	)

	c.String(http.StatusOK, "ok")
}

// Compile-time check
var _ inbound.WebhookHttpPort = (*WebhookHandler)(nil)
