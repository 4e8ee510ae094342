package checkouthttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"github.com/uniedit/paysync/internal/port/outbound"
)

// SubscriptionHandler handles subscription billing HTTP requests.
type SubscriptionHandler struct {
	gateways *gateway.Registry
	subDB    outbound.SubscriptionDatabasePort
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(gateways *gateway.Registry, subDB outbound.SubscriptionDatabasePort) *SubscriptionHandler {
	return &SubscriptionHandler{gateways: gateways, subDB: subDB}
}

// RegisterRoutes registers subscription routes.
func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subs := r.Group("/gateways/:gateway_id/subscriptions/:subscription_id")
	{
		subs.POST("/switch-plan", h.SwitchPlan)
		subs.GET("/switch-plan/preview", h.PreviewSwitchCost)
		subs.GET("/payments", h.ListPayments)
	}
}

// SwitchPlan handles POST /gateways/:gateway_id/subscriptions/:subscription_id/switch-plan.
//
//	@Summary		Switch subscription plan
//	@Tags			Subscription
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int							true	"Gateway ID"
//	@Param			subscription_id	path		int							true	"Subscription ID"
//	@Param			request			body		model.SwitchPlanRequest		true	"Target plan"
//	@Success		200				{object}	model.Subscription
//	@Failure		404				{object}	model.ErrorResponse
//	@Router			/gateways/{gateway_id}/subscriptions/{subscription_id}/switch-plan [post]
func (h *SubscriptionHandler) SwitchPlan(c *gin.Context) {
	var req model.SwitchPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	g, sub, ok := h.resolve(c)
	if !ok {
		return
	}

	updated, err := g.SwitchPlan(c.Request.Context(), sub.ID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PreviewSwitchCost handles GET /gateways/:gateway_id/subscriptions/:subscription_id/switch-plan/preview.
//
//	@Summary		Preview plan switch cost
//	@Tags			Subscription
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int	true	"Gateway ID"
//	@Param			subscription_id	path		int	true	"Subscription ID"
//	@Param			plan_id			query		int	true	"Target plan ID"
//	@Success		200				{object}	model.SwitchCostResponse
//	@Router			/gateways/{gateway_id}/subscriptions/{subscription_id}/switch-plan/preview [get]
func (h *SubscriptionHandler) PreviewSwitchCost(c *gin.Context) {
	var req model.PreviewSwitchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	g, sub, ok := h.resolve(c)
	if !ok {
		return
	}

	cost, err := g.PreviewSwitchCost(c.Request.Context(), sub.ID, req.PlanID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cost)
}

// ListPayments handles GET /gateways/:gateway_id/subscriptions/:subscription_id/payments.
//
//	@Summary		List subscription payments
//	@Tags			Subscription
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int	true	"Gateway ID"
//	@Param			subscription_id	path		int	true	"Subscription ID"
//	@Param			page			query		int	false	"Page"
//	@Param			page_size		query		int	false	"Page size"
//	@Success		200				{object}	map[string]interface{}
//	@Router			/gateways/{gateway_id}/subscriptions/{subscription_id}/payments [get]
func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	var req model.PaymentHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.DefaultPagination()

	g, sub, ok := h.resolve(c)
	if !ok {
		return
	}

	page, err := g.ListPayments(c.Request.Context(), sub.ID, req.PaginationRequest)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// resolve loads the gateway and the caller's subscription on it.
func (h *SubscriptionHandler) resolve(c *gin.Context) (gateway.SubscriptionCapable, *model.Subscription, bool) {
	gatewayID, ok := pathID(c, "gateway_id")
	if !ok {
		return nil, nil, false
	}
	subscriptionID, ok := pathID(c, "subscription_id")
	if !ok {
		return nil, nil, false
	}
	userID := mustGetUserID(c)

	g, err := h.gateways.Subscription(gatewayID)
	if err != nil {
		handleError(c, err)
		return nil, nil, false
	}

	sub, err := h.subDB.FindByID(c.Request.Context(), subscriptionID)
	if err != nil {
		handleError(c, err)
		return nil, nil, false
	}
	if sub == nil || sub.UserID != userID || sub.GatewayID != gatewayID {
		notFound(c, "subscription_not_found", "Subscription not found")
		return nil, nil, false
	}
	return g, sub, true
}

// Compile-time check
var _ inbound.SubscriptionHttpPort = (*SubscriptionHandler)(nil)
