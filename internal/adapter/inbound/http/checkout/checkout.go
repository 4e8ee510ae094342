package checkouthttp

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/inbound"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
)

// Charge classifications recorded in metrics.
const (
	resultSuccessful = "successful"
	resultProcessing = "processing"
	resultRedirect   = "redirect"
	resultDeclined   = "declined"
	resultError      = "error"
)

// CheckoutHandler handles direct charge HTTP requests.
type CheckoutHandler struct {
	gateways      *gateway.Registry
	transactionDB outbound.TransactionDatabasePort
	customerDB    outbound.CustomerDatabasePort
	sourceDB      outbound.PaymentSourceDatabasePort
	metrics       *metrics.Metrics
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(
	gateways *gateway.Registry,
	transactionDB outbound.TransactionDatabasePort,
	customerDB outbound.CustomerDatabasePort,
	sourceDB outbound.PaymentSourceDatabasePort,
	m *metrics.Metrics,
) *CheckoutHandler {
	return &CheckoutHandler{
		gateways:      gateways,
		transactionDB: transactionDB,
		customerDB:    customerDB,
		sourceDB:      sourceDB,
		metrics:       m,
	}
}

// RegisterRoutes registers checkout routes.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	gw := r.Group("/gateways/:gateway_id")
	{
		tx := gw.Group("/transactions/:transaction_id")
		tx.POST("/authorize", h.Authorize)
		tx.POST("/purchase", h.Purchase)
		tx.POST("/capture", h.Capture)
		tx.POST("/refund", h.Refund)

		gw.GET("/payment-methods", h.ListPaymentMethods)
	}
}

// Authorize handles POST /gateways/:gateway_id/transactions/:transaction_id/authorize.
//
//	@Summary		Authorize a transaction
//	@Description	Places a hold for the transaction amount through a payment intent
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int						true	"Gateway ID"
//	@Param			transaction_id	path		int						true	"Transaction ID"
//	@Param			request			body		model.ChargeRequest		true	"Payment method"
//	@Success		200				{object}	model.RequestResult
//	@Failure		402				{object}	model.RequestResult
//	@Failure		404				{object}	model.ErrorResponse
//	@Failure		502				{object}	model.ErrorResponse
//	@Router			/gateways/{gateway_id}/transactions/{transaction_id}/authorize [post]
func (h *CheckoutHandler) Authorize(c *gin.Context) {
	h.charge(c, "authorize", false)
}

// Purchase handles POST /gateways/:gateway_id/transactions/:transaction_id/purchase.
//
//	@Summary		Purchase a transaction
//	@Description	Charges the transaction amount with automatic capture
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int						true	"Gateway ID"
//	@Param			transaction_id	path		int						true	"Transaction ID"
//	@Param			request			body		model.ChargeRequest		true	"Payment method"
//	@Success		200				{object}	model.RequestResult
//	@Failure		402				{object}	model.RequestResult
//	@Failure		404				{object}	model.ErrorResponse
//	@Failure		502				{object}	model.ErrorResponse
//	@Router			/gateways/{gateway_id}/transactions/{transaction_id}/purchase [post]
func (h *CheckoutHandler) Purchase(c *gin.Context) {
	h.charge(c, "purchase", true)
}

func (h *CheckoutHandler) charge(c *gin.Context, op string, capture bool) {
	var req model.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, op, func(ctx context.Context, g gateway.ChargeCapable, tx *model.Transaction) (*model.RequestResult, error) {
		return g.AuthorizeOrPurchase(ctx, tx, req.PaymentMethod, capture)
	})
}

// Capture handles POST /gateways/:gateway_id/transactions/:transaction_id/capture.
//
//	@Summary		Capture an authorization
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int						true	"Gateway ID"
//	@Param			transaction_id	path		int						true	"Transaction ID"
//	@Param			request			body		model.CaptureRequest	true	"Intent reference"
//	@Success		200				{object}	model.RequestResult
//	@Failure		402				{object}	model.RequestResult
//	@Router			/gateways/{gateway_id}/transactions/{transaction_id}/capture [post]
func (h *CheckoutHandler) Capture(c *gin.Context) {
	var req model.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, "capture", func(ctx context.Context, g gateway.ChargeCapable, tx *model.Transaction) (*model.RequestResult, error) {
		return g.Capture(ctx, tx, req.Reference)
	})
}

// Refund handles POST /gateways/:gateway_id/transactions/:transaction_id/refund.
//
//	@Summary		Refund a transaction
//	@Tags			Checkout
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id		path		int	true	"Gateway ID"
//	@Param			transaction_id	path		int	true	"Refund transaction ID"
//	@Success		200				{object}	model.RequestResult
//	@Failure		402				{object}	model.RequestResult
//	@Failure		422				{object}	model.ErrorResponse
//	@Router			/gateways/{gateway_id}/transactions/{transaction_id}/refund [post]
func (h *CheckoutHandler) Refund(c *gin.Context) {
	h.run(c, "refund", func(ctx context.Context, g gateway.ChargeCapable, tx *model.Transaction) (*model.RequestResult, error) {
		return g.Refund(ctx, tx)
	})
}

type chargeFunc func(ctx context.Context, g gateway.ChargeCapable, tx *model.Transaction) (*model.RequestResult, error)

// run resolves the gateway and the caller's transaction, then answers with
// the classified result: 200 unless the processor declined.
func (h *CheckoutHandler) run(c *gin.Context, op string, fn chargeFunc) {
	gatewayID, ok := pathID(c, "gateway_id")
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "transaction_id")
	if !ok {
		return
	}
	userID := mustGetUserID(c)

	g, err := h.gateways.Charge(gatewayID)
	if err != nil {
		handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	tx, err := h.transactionDB.FindByID(ctx, transactionID)
	if err != nil {
		handleError(c, err)
		return
	}
	if tx == nil || tx.UserID != userID {
		notFound(c, "transaction_not_found", "Transaction not found")
		return
	}

	result, err := fn(ctx, g, tx)
	if err != nil {
		h.record(gatewayID, op, resultError)
		handleError(c, err)
		return
	}

	classification := classify(result)
	h.record(gatewayID, op, classification)
	if classification == resultDeclined {
		c.JSON(http.StatusPaymentRequired, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) record(gatewayID int64, op, result string) {
	if h.metrics != nil {
		h.metrics.RecordChargeResult(gatewayID, op, result)
	}
}

func classify(r *model.RequestResult) string {
	switch {
	case r.Successful:
		return resultSuccessful
	case r.RequiresRedirect:
		return resultRedirect
	case r.Processing:
		return resultProcessing
	default:
		return resultDeclined
	}
}

// ListPaymentMethods handles GET /gateways/:gateway_id/payment-methods.
//
//	@Summary		List stored payment methods
//	@Tags			Checkout
//	@Produce		json
//	@Security		BearerAuth
//	@Param			gateway_id	path		int	true	"Gateway ID"
//	@Success		200			{array}		model.PaymentSource
//	@Router			/gateways/{gateway_id}/payment-methods [get]
func (h *CheckoutHandler) ListPaymentMethods(c *gin.Context) {
	gatewayID, ok := pathID(c, "gateway_id")
	if !ok {
		return
	}
	userID := mustGetUserID(c)

	if _, err := h.gateways.Get(gatewayID); err != nil {
		handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	customer, err := h.customerDB.FindByUser(ctx, userID, gatewayID)
	if err != nil {
		handleError(c, err)
		return
	}
	if customer == nil {
		c.JSON(http.StatusOK, []*model.PaymentSource{})
		return
	}

	sources, err := h.sourceDB.ListByCustomer(ctx, customer.Reference)
	if err != nil {
		handleError(c, err)
		return
	}
	if sources == nil {
		sources = []*model.PaymentSource{}
	}
	c.JSON(http.StatusOK, sources)
}

// Compile-time check
var _ inbound.CheckoutHttpPort = (*CheckoutHandler)(nil)
