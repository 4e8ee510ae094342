package adminhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/invoice"
	"github.com/uniedit/paysync/internal/domain/webhook"
	"github.com/uniedit/paysync/internal/model"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockBillingGateway implements the subscription and payment method capabilities.
type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) ID() int64       { return 1 }
func (m *MockBillingGateway) Name() string    { return "stripe-test" }
func (m *MockBillingGateway) Variant() string { return gateway.VariantBilling }

func (m *MockBillingGateway) HandleWebhook(context.Context, []byte, string) webhook.Outcome {
	return webhook.OutcomeHandled
}

func (m *MockBillingGateway) SwitchPlan(ctx context.Context, subscriptionID int64, req *model.SwitchPlanRequest) (*model.Subscription, error) {
	args := m.Called(ctx, subscriptionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockBillingGateway) PreviewSwitchCost(ctx context.Context, subscriptionID, planID int64) (*model.SwitchCostResponse, error) {
	args := m.Called(ctx, subscriptionID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SwitchCostResponse), args.Error(1)
}

func (m *MockBillingGateway) ListPayments(ctx context.Context, subscriptionID int64, page model.PaginationRequest) (*model.PaginatedResponse[*model.SubscriptionPayment], error) {
	args := m.Called(ctx, subscriptionID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaginatedResponse[*model.SubscriptionPayment]), args.Error(1)
}

func (m *MockBillingGateway) SyncInvoices(ctx context.Context, subscriptionID int64) (int, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Int(0), args.Error(1)
}

func (m *MockBillingGateway) SyncPlans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBillingGateway) SyncPaymentMethods(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// hooksOnlyGateway has no billing capabilities.
type hooksOnlyGateway struct{}

func (hooksOnlyGateway) ID() int64       { return 2 }
func (hooksOnlyGateway) Name() string    { return "hooks" }
func (hooksOnlyGateway) Variant() string { return "hooks" }
func (hooksOnlyGateway) HandleWebhook(context.Context, []byte, string) webhook.Outcome {
	return webhook.OutcomeHandled
}

func setupRouter(t *testing.T) (*gin.Engine, *MockBillingGateway) {
	t.Helper()
	gw := new(MockBillingGateway)
	registry := gateway.NewRegistry()
	require.NoError(t, registry.Register(gw))
	require.NoError(t, registry.Register(hooksOnlyGateway{}))

	r := gin.New()
	NewAdminHandler(registry, zap.NewNop()).RegisterRoutes(r.Group("/admin"))
	return r, gw
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", path, nil))
	return w
}

func TestAdminHandler_Sync(t *testing.T) {
	t.Run("sync plans", func(t *testing.T) {
		r, gw := setupRouter(t)
		gw.On("SyncPlans", mock.Anything).Return(4, nil)

		w := post(r, "/admin/gateways/1/sync/plans")

		require.Equal(t, http.StatusOK, w.Code)
		var resp SyncResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, SyncResponse{GatewayID: 1, Synced: 4}, resp)
	})

	t.Run("sync payment methods", func(t *testing.T) {
		r, gw := setupRouter(t)
		gw.On("SyncPaymentMethods", mock.Anything).Return(2, nil)

		w := post(r, "/admin/gateways/1/sync/payment-methods")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"gateway_id":1,"synced":2}`, w.Body.String())
	})

	t.Run("sync invoices", func(t *testing.T) {
		r, gw := setupRouter(t)
		gw.On("SyncInvoices", mock.Anything, int64(5)).Return(3, nil)

		w := post(r, "/admin/gateways/1/subscriptions/5/sync-invoices")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"gateway_id":1,"synced":3}`, w.Body.String())
	})

	t.Run("unknown subscription", func(t *testing.T) {
		r, gw := setupRouter(t)
		gw.On("SyncInvoices", mock.Anything, int64(5)).Return(0, fmt.Errorf("%w: id 5", invoice.ErrSubscriptionNotFound))

		assert.Equal(t, http.StatusNotFound, post(r, "/admin/gateways/1/subscriptions/5/sync-invoices").Code)
	})

	t.Run("invalid ids", func(t *testing.T) {
		r, _ := setupRouter(t)

		assert.Equal(t, http.StatusBadRequest, post(r, "/admin/gateways/x/sync/plans").Code)
		assert.Equal(t, http.StatusBadRequest, post(r, "/admin/gateways/1/subscriptions/0/sync-invoices").Code)
	})

	t.Run("unknown and incapable gateways", func(t *testing.T) {
		r, _ := setupRouter(t)

		assert.Equal(t, http.StatusNotFound, post(r, "/admin/gateways/9/sync/plans").Code)
		assert.Equal(t, http.StatusUnprocessableEntity, post(r, "/admin/gateways/2/sync/payment-methods").Code)
	})

	t.Run("processor failure", func(t *testing.T) {
		r, gw := setupRouter(t)
		gw.On("SyncPlans", mock.Anything).Return(0, errors.New("stripe unavailable"))

		w := post(r, "/admin/gateways/1/sync/plans")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "sync_failed")
	})
}
