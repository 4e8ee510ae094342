package subscription

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
)

// --- Mock Implementations ---

func snapshotArg(args mock.Arguments, i int) model.Snapshot {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(model.Snapshot)
}

type MockProcessorPort struct {
	mock.Mock
}

func (m *MockProcessorPort) CreateCustomer(ctx context.Context, params *outbound.CustomerParams, key string) (model.Snapshot, error) {
	args := m.Called(ctx, params, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) RetrieveCustomer(ctx context.Context, reference string) (model.Snapshot, error) {
	args := m.Called(ctx, reference)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) ListCustomers(ctx context.Context, fn func(model.Snapshot) error) error {
	args := m.Called(ctx, fn)
	for _, item := range args.Get(0).([]model.Snapshot) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockProcessorPort) ListPaymentMethods(ctx context.Context, customerReference string, fn func(model.Snapshot) error) error {
	args := m.Called(ctx, customerReference, fn)
	for _, item := range args.Get(0).([]model.Snapshot) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockProcessorPort) CreatePaymentIntent(ctx context.Context, params *outbound.PaymentIntentParams, key string) (model.Snapshot, error) {
	args := m.Called(ctx, params, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) UpdatePaymentIntent(ctx context.Context, reference string, params *outbound.PaymentIntentParams, key string) (model.Snapshot, error) {
	args := m.Called(ctx, reference, params, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) ConfirmPaymentIntent(ctx context.Context, reference, returnURL, key string) (model.Snapshot, error) {
	args := m.Called(ctx, reference, returnURL, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) CapturePaymentIntent(ctx context.Context, reference, key string) (model.Snapshot, error) {
	args := m.Called(ctx, reference, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) RetrievePaymentIntent(ctx context.Context, reference string) (model.Snapshot, error) {
	args := m.Called(ctx, reference)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) CreateRefund(ctx context.Context, params *outbound.RefundParams, key string) (model.Snapshot, error) {
	args := m.Called(ctx, params, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) RetrieveSubscription(ctx context.Context, reference string) (model.Snapshot, error) {
	args := m.Called(ctx, reference)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) SaveSubscription(ctx context.Context, reference string, params *outbound.SubscriptionUpdateParams, key string) (model.Snapshot, error) {
	args := m.Called(ctx, reference, params, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) ListInvoices(ctx context.Context, filter outbound.InvoiceFilter, fn func(model.Snapshot) error) error {
	args := m.Called(ctx, filter, fn)
	for _, item := range args.Get(0).([]model.Snapshot) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockProcessorPort) RetrieveInvoice(ctx context.Context, reference string) (model.Snapshot, error) {
	args := m.Called(ctx, reference)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) PayInvoice(ctx context.Context, reference, key string) (model.Snapshot, error) {
	args := m.Called(ctx, reference, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) CreateInvoice(ctx context.Context, customerReference, subscriptionReference, key string) (model.Snapshot, error) {
	args := m.Called(ctx, customerReference, subscriptionReference, key)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) PreviewUpcomingInvoice(ctx context.Context, params *outbound.UpcomingInvoiceParams) (model.Snapshot, error) {
	args := m.Called(ctx, params)
	return snapshotArg(args, 0), args.Error(1)
}

func (m *MockProcessorPort) ListPlans(ctx context.Context, fn func(model.Snapshot) error) error {
	args := m.Called(ctx, fn)
	for _, item := range args.Get(0).([]model.Snapshot) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockProcessorPort) ListProducts(ctx context.Context, fn func(model.Snapshot) error) error {
	args := m.Called(ctx, fn)
	for _, item := range args.Get(0).([]model.Snapshot) {
		if err := fn(item); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockProcessorPort) VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	args := m.Called(payload, header, secret, tolerance)
	return args.Error(0)
}

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
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type MockPlanDatabasePort struct {
	mock.Mock
}

func (m *MockPlanDatabasePort) FindByID(ctx context.Context, id int64) (*model.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanDatabasePort) FindByReference(ctx context.Context, reference string) (*model.Plan, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanDatabasePort) ListByProduct(ctx context.Context, productReference string) ([]*model.Plan, error) {
	args := m.Called(ctx, productReference)
	return args.Get(0).([]*model.Plan), args.Error(1)
}

func (m *MockPlanDatabasePort) Upsert(ctx context.Context, plan *model.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanDatabasePort) DeleteByReference(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}
