package payment

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/uniedit/paysync/internal/infra/events"
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

type MockPaymentIntentDatabasePort struct {
	mock.Mock
}

func (m *MockPaymentIntentDatabasePort) Find(ctx context.Context, gatewayID, customerID int64, hash string) (*model.PaymentIntentRecord, error) {
	args := m.Called(ctx, gatewayID, customerID, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntentRecord), args.Error(1)
}

func (m *MockPaymentIntentDatabasePort) FindByReference(ctx context.Context, reference string) (*model.PaymentIntentRecord, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntentRecord), args.Error(1)
}

func (m *MockPaymentIntentDatabasePort) Upsert(ctx context.Context, record *model.PaymentIntentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentIntentDatabasePort) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerDatabasePort struct {
	mock.Mock
}

func (m *MockCustomerDatabasePort) FindByUser(ctx context.Context, userID, gatewayID int64) (*model.CustomerRecord, error) {
	args := m.Called(ctx, userID, gatewayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerRecord), args.Error(1)
}

func (m *MockCustomerDatabasePort) FindByReference(ctx context.Context, reference string) (*model.CustomerRecord, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerRecord), args.Error(1)
}

func (m *MockCustomerDatabasePort) Create(ctx context.Context, customer *model.CustomerRecord) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerDatabasePort) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerDatabasePort) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentSourceDatabasePort struct {
	mock.Mock
}

func (m *MockPaymentSourceDatabasePort) Upsert(ctx context.Context, source *model.PaymentSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockPaymentSourceDatabasePort) DeleteByReference(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func (m *MockPaymentSourceDatabasePort) ListByCustomer(ctx context.Context, customerReference string) ([]*model.PaymentSource, error) {
	args := m.Called(ctx, customerReference)
	return args.Get(0).([]*model.PaymentSource), args.Error(1)
}

type MockHookPublisherPort struct {
	mock.Mock
}

func (m *MockHookPublisherPort) Emit(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
