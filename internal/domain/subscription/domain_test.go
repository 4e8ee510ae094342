package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

type subscriptionFixture struct {
	processor *MockProcessorPort
	subDB     *MockSubscriptionDatabasePort
	planDB    *MockPlanDatabasePort
	domain    *Domain
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		processor: new(MockProcessorPort),
		subDB:     new(MockSubscriptionDatabasePort),
		planDB:    new(MockPlanDatabasePort),
	}
	f.domain = NewSubscriptionDomain(1, f.processor, f.subDB, f.planDB, zap.NewNop())
	f.domain.now = func() time.Time { return time.Unix(1698000000, 0) }
	return f
}

func decodeSnapshot(t *testing.T, raw string) model.Snapshot {
	t.Helper()
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	return snap
}

func int64Ptr(v int64) *int64 { return &v }

func TestDomain_HandleSubscriptionUpdated(t *testing.T) {
	t.Run("applies the processor snapshot", func(t *testing.T) {
		f := newSubscriptionFixture()
		snap := decodeSnapshot(t, `{"id":"sub_1","status":"active","plan":{"id":"plan_x"},"canceled_at":null,"current_period_end":1700000000}`)

		sub := &model.Subscription{ID: 4, GatewayID: 1, Reference: "sub_1", PlanID: int64Ptr(1)}
		f.subDB.On("FindByReference", mock.Anything, "sub_1").Return(sub, nil)
		f.planDB.On("FindByReference", mock.Anything, "plan_x").Return(&model.Plan{ID: 2, Reference: "plan_x"}, nil)
		f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(nil)

		require.NoError(t, f.domain.HandleSubscriptionUpdated(context.Background(), snap))

		require.NotNil(t, sub.NextPaymentDate)
		assert.True(t, sub.NextPaymentDate.Equal(time.Unix(1700000000, 0)))
		assert.False(t, sub.IsCanceled)
		assert.True(t, sub.HasStarted)
		assert.Equal(t, int64(2), *sub.PlanID)
		assert.Equal(t, "active", sub.Status)
		assert.Equal(t, "sub_1", sub.SubscriptionData.String("id"))
	})

	t.Run("unknown subscription is dropped", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.subDB.On("FindByReference", mock.Anything, "sub_missing").Return(nil, nil).Once()

		err := f.domain.HandleSubscriptionUpdated(context.Background(), model.Snapshot{"id": "sub_missing"})
		require.NoError(t, err)
		f.subDB.AssertNumberOfCalls(t, "FindByReference", 1)
		f.subDB.AssertNotCalled(t, "UpdateReconciled", mock.Anything, mock.Anything)
	})

	t.Run("unknown plan keeps the current plan", func(t *testing.T) {
		f := newSubscriptionFixture()
		sub := &model.Subscription{ID: 4, Reference: "sub_1", PlanID: int64Ptr(1)}
		f.subDB.On("FindByReference", mock.Anything, "sub_1").Return(sub, nil)
		f.planDB.On("FindByReference", mock.Anything, "plan_new").Return(nil, nil)
		f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(nil)

		snap := model.Snapshot{
			"id":     "sub_1",
			"status": "active",
			"items":  map[string]any{"data": []any{map[string]any{"id": "si_1", "plan": map[string]any{"id": "plan_new"}}}},
		}
		require.NoError(t, f.domain.HandleSubscriptionUpdated(context.Background(), snap))
		assert.Equal(t, int64(1), *sub.PlanID)
	})

	t.Run("past due fetches the latest invoice", func(t *testing.T) {
		f := newSubscriptionFixture()
		sub := &model.Subscription{ID: 4, Reference: "sub_1"}
		f.subDB.On("FindByReference", mock.Anything, "sub_1").Return(sub, nil)
		f.processor.On("RetrieveInvoice", mock.Anything, "in_9").
			Return(model.Snapshot{"id": "in_9", "created": float64(1697000000)}, nil)
		f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(nil)

		snap := model.Snapshot{"id": "sub_1", "status": "past_due", "latest_invoice": "in_9"}
		require.NoError(t, f.domain.HandleSubscriptionUpdated(context.Background(), snap))
		assert.True(t, sub.IsSuspended)
		require.NotNil(t, sub.DateSuspended)
		assert.Equal(t, int64(1697000000), sub.DateSuspended.Unix())
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newSubscriptionFixture()
		sub := &model.Subscription{ID: 4, Reference: "sub_1"}
		f.subDB.On("FindByReference", mock.Anything, "sub_1").Return(sub, nil)
		f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(errors.New("db down"))

		err := f.domain.HandleSubscriptionUpdated(context.Background(), model.Snapshot{"id": "sub_1", "status": "active"})
		assert.Error(t, err)
	})
}

func TestDomain_HandleSubscriptionExpired(t *testing.T) {
	f := newSubscriptionFixture()
	sub := &model.Subscription{ID: 4, Reference: "sub_1", SubscriptionStatus: model.SubscriptionStatus{HasStarted: true}}
	f.subDB.On("FindByReference", mock.Anything, "sub_1").Return(sub, nil)
	f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(nil)

	snap := model.Snapshot{"id": "sub_1", "status": "canceled", "canceled_at": float64(1699000000), "ended_at": float64(1699500000)}
	require.NoError(t, f.domain.HandleSubscriptionExpired(context.Background(), snap))

	assert.True(t, sub.IsExpired)
	assert.Equal(t, int64(1699500000), sub.DateExpired.Unix())
	assert.True(t, sub.IsCanceled)
}

func TestDomain_PlanCatalogue(t *testing.T) {
	t.Run("plan event keeps stored product details", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.planDB.On("FindByReference", mock.Anything, "plan_x").
			Return(&model.Plan{ID: 2, Reference: "plan_x", Name: "Pro", Features: pq.StringArray{"sso"}}, nil)
		f.planDB.On("Upsert", mock.Anything, mock.MatchedBy(func(p *model.Plan) bool {
			return p.ID == 2 && p.Name == "Pro" && p.Amount == 1500 && len(p.Features) == 1
		})).Return(nil)

		snap := model.Snapshot{"id": "plan_x", "product": "prod_1", "amount": float64(1500), "currency": "usd", "interval": "month", "active": true}
		require.NoError(t, f.domain.HandlePlanEvent(context.Background(), snap))
		f.planDB.AssertExpectations(t)
	})

	t.Run("product event updates its plans", func(t *testing.T) {
		f := newSubscriptionFixture()
		plan := &model.Plan{ID: 2, Reference: "plan_x", ProductReference: "prod_1"}
		f.planDB.On("ListByProduct", mock.Anything, "prod_1").Return([]*model.Plan{plan}, nil)
		f.planDB.On("Upsert", mock.Anything, plan).Return(nil)

		product := model.Snapshot{"id": "prod_1", "name": "Pro", "features": []any{map[string]any{"name": "sso"}, map[string]any{"name": "audit log"}}}
		require.NoError(t, f.domain.HandleProductEvent(context.Background(), product))
		assert.Equal(t, "Pro", plan.Name)
		assert.Equal(t, pq.StringArray{"sso", "audit log"}, plan.Features)
	})

	t.Run("plan deleted", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.planDB.On("DeleteByReference", mock.Anything, "plan_x").Return(nil)
		require.NoError(t, f.domain.HandlePlanDeleted(context.Background(), model.Snapshot{"id": "plan_x"}))
		f.planDB.AssertExpectations(t)
	})

	t.Run("sync plans", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.processor.On("ListProducts", mock.Anything, mock.Anything).
			Return([]model.Snapshot{{"id": "prod_1", "name": "Pro"}}, nil)
		f.processor.On("ListPlans", mock.Anything, mock.Anything).
			Return([]model.Snapshot{
				{"id": "plan_m", "product": "prod_1", "amount": float64(1500)},
				{"id": "plan_y", "product": "prod_1", "amount": float64(15000)},
			}, nil)
		f.planDB.On("FindByReference", mock.Anything, "plan_m").Return(&model.Plan{ID: 2}, nil)
		f.planDB.On("FindByReference", mock.Anything, "plan_y").Return(nil, nil)
		f.planDB.On("Upsert", mock.Anything, mock.MatchedBy(func(p *model.Plan) bool {
			return p.Name == "Pro"
		})).Return(nil)

		n, err := f.domain.SyncPlans(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func remoteSubscription() model.Snapshot {
	return model.Snapshot{
		"id":       "sub_1",
		"customer": "cus_1",
		"status":   "active",
		"items": map[string]any{"data": []any{
			map[string]any{"id": "si_1", "quantity": float64(3), "plan": map[string]any{"id": "plan_x"}},
		}},
	}
}

func TestDomain_SwitchPlan(t *testing.T) {
	setup := func(status string) (*subscriptionFixture, *model.Subscription) {
		f := newSubscriptionFixture()
		sub := &model.Subscription{ID: 4, GatewayID: 1, Reference: "sub_1", Status: status, Quantity: 3}
		f.subDB.On("FindByID", mock.Anything, int64(4)).Return(sub, nil)
		f.planDB.On("FindByID", mock.Anything, int64(2)).Return(&model.Plan{ID: 2, Reference: "plan_y"}, nil)
		f.processor.On("RetrieveSubscription", mock.Anything, "sub_1").Return(remoteSubscription(), nil)
		f.subDB.On("UpdateReconciled", mock.Anything, sub).Return(nil)
		return f, sub
	}

	t.Run("swaps the line item and invoices now", func(t *testing.T) {
		f, sub := setup("active")
		prorate := false
		f.processor.On("SaveSubscription", mock.Anything, "sub_1", mock.MatchedBy(func(p *outbound.SubscriptionUpdateParams) bool {
			return p.ItemID == "si_1" && p.Plan == "plan_y" && p.Quantity == 3 && p.Prorate != nil && !*p.Prorate
		}), mock.Anything).
			Return(model.Snapshot{"id": "sub_1", "customer": "cus_1", "status": "active", "current_period_end": float64(1700000000)}, nil)
		f.processor.On("CreateInvoice", mock.Anything, "cus_1", "sub_1", mock.Anything).Return(nil, errors.New("nothing to invoice"))

		out, err := f.domain.SwitchPlan(context.Background(), 4, &model.SwitchPlanRequest{PlanID: 2, Prorate: &prorate, InvoiceNow: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), *out.PlanID)
		assert.Equal(t, int64(1700000000), sub.NextPaymentDate.Unix())
		f.processor.AssertCalled(t, "CreateInvoice", mock.Anything, "cus_1", "sub_1", mock.Anything)
	})

	t.Run("no invoice during a trial", func(t *testing.T) {
		f, _ := setup("trialing")
		f.processor.On("SaveSubscription", mock.Anything, "sub_1", mock.Anything, mock.Anything).
			Return(model.Snapshot{"id": "sub_1", "customer": "cus_1", "status": "trialing"}, nil)

		_, err := f.domain.SwitchPlan(context.Background(), 4, &model.SwitchPlanRequest{PlanID: 2, Quantity: 5, InvoiceNow: true})
		require.NoError(t, err)
		f.processor.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.subDB.On("FindByID", mock.Anything, int64(4)).Return(&model.Subscription{ID: 4, GatewayID: 1}, nil)
		f.planDB.On("FindByID", mock.Anything, int64(9)).Return(nil, nil)

		_, err := f.domain.SwitchPlan(context.Background(), 4, &model.SwitchPlanRequest{PlanID: 9})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("other gateway", func(t *testing.T) {
		f := newSubscriptionFixture()
		f.subDB.On("FindByID", mock.Anything, int64(4)).Return(&model.Subscription{ID: 4, GatewayID: 2}, nil)

		_, err := f.domain.SwitchPlan(context.Background(), 4, &model.SwitchPlanRequest{PlanID: 2})
		assert.ErrorIs(t, err, ErrGatewayMismatch)
	})
}

func TestDomain_PreviewSwitchCost(t *testing.T) {
	setup := func(preview model.Snapshot) *subscriptionFixture {
		f := newSubscriptionFixture()
		f.subDB.On("FindByID", mock.Anything, int64(4)).Return(&model.Subscription{ID: 4, GatewayID: 1, Reference: "sub_1"}, nil)
		f.planDB.On("FindByID", mock.Anything, int64(2)).Return(&model.Plan{ID: 2, Reference: "plan_y"}, nil)
		f.processor.On("RetrieveSubscription", mock.Anything, "sub_1").Return(remoteSubscription(), nil)
		f.processor.On("PreviewUpcomingInvoice", mock.Anything, mock.MatchedBy(func(p *outbound.UpcomingInvoiceParams) bool {
			return p.Customer == "cus_1" && p.ItemID == "si_1" && p.Plan == "plan_y" && p.BillingCycleAnchorNow
		})).Return(preview, nil)
		return f
	}

	t.Run("converts minor units", func(t *testing.T) {
		f := setup(model.Snapshot{"total": float64(2550), "currency": "usd"})
		cost, err := f.domain.PreviewSwitchCost(context.Background(), 4, 2)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("25.50").Equal(cost.Amount))
		assert.Equal(t, "usd", cost.Currency)
	})

	t.Run("falls back to the raw total", func(t *testing.T) {
		f := setup(model.Snapshot{"total": float64(2550), "currency": "zzz"})
		cost, err := f.domain.PreviewSwitchCost(context.Background(), 4, 2)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2550).Equal(cost.Amount))
	})
}
