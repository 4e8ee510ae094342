package checkouthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/paysync/internal/domain/gateway"
	"github.com/uniedit/paysync/internal/domain/subscription"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/utils/middleware"
)

type MockSubscriptionDatabasePort struct {
	mock.Mock
}

func (m *MockSubscriptionDatabasePort) FindByID(ctx context.Context, id int64) (*model.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionDatabasePort) FindByReference(ctx context.Context, reference string) (*model.Subscription, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionDatabasePort) UpdateReconciled(ctx context.Context, sub *model.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

type subscriptionFixture struct {
	gw     *MockGateway
	subDB  *MockSubscriptionDatabasePort
	router *gin.Engine
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	f := &subscriptionFixture{
		gw:    &MockGateway{id: 1},
		subDB: new(MockSubscriptionDatabasePort),
	}
	registry := gateway.NewRegistry()
	require.NoError(t, registry.Register(f.gw))
	require.NoError(t, registry.Register(webhookOnlyGateway{id: 2}))

	f.router = gin.New()
	api := f.router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
	})
	NewSubscriptionHandler(registry, f.subDB).RegisterRoutes(api)
	return f
}

func (f *subscriptionFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func ownedSubscription() *model.Subscription {
	return &model.Subscription{ID: 5, UserID: testUserID, GatewayID: 1, Reference: "sub_1", Status: "active"}
}

func TestSubscriptionHandler_SwitchPlan(t *testing.T) {
	t.Run("switches the caller's subscription", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(ownedSubscription(), nil)
		planID := int64(3)
		f.gw.On("SwitchPlan", mock.Anything, int64(5), mock.MatchedBy(func(req *model.SwitchPlanRequest) bool {
			return req.PlanID == 3 && req.InvoiceNow
		})).Return(&model.Subscription{ID: 5, PlanID: &planID, Status: "active"}, nil)

		w := f.do("POST", "/api/v1/gateways/1/subscriptions/5/switch-plan", `{"plan_id":3,"invoice_now":true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var sub model.Subscription
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
		require.NotNil(t, sub.PlanID)
		assert.Equal(t, int64(3), *sub.PlanID)
	})

	t.Run("invalid body", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		w := f.do("POST", "/api/v1/gateways/1/subscriptions/5/switch-plan", `{"plan_id":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subscription of another user", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		sub := ownedSubscription()
		sub.UserID = 8
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(sub, nil)

		w := f.do("POST", "/api/v1/gateways/1/subscriptions/5/switch-plan", `{"plan_id":3}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		f.gw.AssertNotCalled(t, "SwitchPlan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("subscription on another gateway", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		sub := ownedSubscription()
		sub.GatewayID = 4
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(sub, nil)

		w := f.do("POST", "/api/v1/gateways/1/subscriptions/5/switch-plan", `{"plan_id":3}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("gateway without subscriptions", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		w := f.do("POST", "/api/v1/gateways/2/subscriptions/5/switch-plan", `{"plan_id":3}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("subscription without line item", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(ownedSubscription(), nil)
		f.gw.On("SwitchPlan", mock.Anything, int64(5), mock.Anything).Return(nil, subscription.ErrNoLineItem)

		w := f.do("POST", "/api/v1/gateways/1/subscriptions/5/switch-plan", `{"plan_id":3}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "no_line_item")
	})
}

func TestSubscriptionHandler_PreviewSwitchCost(t *testing.T) {
	t.Run("returns the prorated amount", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(ownedSubscription(), nil)
		f.gw.On("PreviewSwitchCost", mock.Anything, int64(5), int64(3)).
			Return(&model.SwitchCostResponse{Amount: decimal.RequireFromString("4.5"), Currency: "usd"}, nil)

		w := f.do("GET", "/api/v1/gateways/1/subscriptions/5/switch-plan/preview?plan_id=3", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var cost model.SwitchCostResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cost))
		assert.True(t, cost.Amount.Equal(decimal.RequireFromString("4.5")))
	})

	t.Run("plan id is required", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		w := f.do("GET", "/api/v1/gateways/1/subscriptions/5/switch-plan/preview", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(ownedSubscription(), nil)
		f.gw.On("PreviewSwitchCost", mock.Anything, int64(5), int64(9)).Return(nil, subscription.ErrPlanNotFound)

		w := f.do("GET", "/api/v1/gateways/1/subscriptions/5/switch-plan/preview?plan_id=9", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "plan_not_found")
	})
}

func TestSubscriptionHandler_ListPayments(t *testing.T) {
	t.Run("applies default pagination", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(ownedSubscription(), nil)
		f.gw.On("ListPayments", mock.Anything, int64(5), model.PaginationRequest{Page: 1, PageSize: 20}).
			Return(&model.PaginatedResponse[*model.SubscriptionPayment]{
				Data:     []*model.SubscriptionPayment{{ID: 1}},
				Total:    1,
				Page:     1,
				PageSize: 20,
			}, nil)

		w := f.do("GET", "/api/v1/gateways/1/subscriptions/5/payments", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":1`)
		f.gw.AssertExpectations(t)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.subDB.On("FindByID", mock.Anything, int64(5)).Return(nil, nil)

		w := f.do("GET", "/api/v1/gateways/1/subscriptions/5/payments", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
