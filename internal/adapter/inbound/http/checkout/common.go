package checkouthttp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/payment"
	"github.com/uniedit/paysync/internal/domain/subscription"
	"github.com/uniedit/paysync/internal/model"
	apperrors "github.com/uniedit/paysync/internal/utils/errors"
	"github.com/uniedit/paysync/internal/utils/middleware"
)

// mustGetUserID returns the user ID from context, panics if not found.
func mustGetUserID(c *gin.Context) int64 {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}

// pathID parses a positive integer path parameter, answering 400 when invalid.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_id",
			Message: "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Code:    "invalid_input",
		Message: err.Error(),
	})
}

func notFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, model.ErrorResponse{Code: code, Message: message})
}

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var statusCode int
	var errorCode string
	var message string

	var gatewayErr *payment.GatewayError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, gateway.ErrGatewayNotFound):
		statusCode = http.StatusNotFound
		errorCode = "gateway_not_found"
		message = "Gateway not found"

	case errors.Is(err, gateway.ErrNotSupported), errors.Is(err, payment.ErrNotSupported):
		statusCode = http.StatusUnprocessableEntity
		errorCode = "not_supported"
		message = "Operation not supported by this gateway"

	case errors.Is(err, payment.ErrIntentNotFound):
		statusCode = http.StatusNotFound
		errorCode = "intent_not_found"
		message = "Payment intent not found"

	case errors.Is(err, subscription.ErrSubscriptionNotFound), errors.Is(err, subscription.ErrGatewayMismatch):
		statusCode = http.StatusNotFound
		errorCode = "subscription_not_found"
		message = "Subscription not found"

	case errors.Is(err, subscription.ErrPlanNotFound):
		statusCode = http.StatusNotFound
		errorCode = "plan_not_found"
		message = "Plan not found"

	case errors.Is(err, subscription.ErrNoLineItem):
		statusCode = http.StatusConflict
		errorCode = "no_line_item"
		message = "Subscription has no plan to switch"

	case errors.Is(err, payment.ErrRequestRejected):
		statusCode = http.StatusConflict
		errorCode = "request_rejected"
		message = "Payment request was rejected"

	case errors.Is(err, payment.ErrCustomer):
		statusCode = http.StatusBadGateway
		errorCode = "customer_error"
		message = "Payment customer could not be resolved"

	case errors.As(err, &gatewayErr):
		statusCode = http.StatusBadGateway
		errorCode = "gateway_error"
		message = "Payment gateway error"

	case errors.As(err, &appErr):
		statusCode = appErr.StatusCode
		errorCode = appErr.Code
		message = appErr.Message

	default:
		statusCode = apperrors.GetStatusCode(err)
		errorCode = strings.ToLower(apperrors.CodeInternal)
		message = http.StatusText(statusCode)
	}

	_ = c.Error(err)
	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}
