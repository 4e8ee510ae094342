package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/uniedit/paysync/internal/model"
	"github.com/uniedit/paysync/internal/port/outbound"
	"github.com/uniedit/paysync/internal/utils/metrics"
	"go.uber.org/zap"
)

func newTestProcessor(t *testing.T, handler http.HandlerFunc) (*Processor, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	p := NewProcessor(Config{
		GatewayID:       1,
		SecretKey:       "sk_test_123",
		APIURL:          server.URL,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, server.Client(), m, zap.NewNop())
	return p, m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestProcessor_CreatePaymentIntent(t *testing.T) {
	p, m := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "abc123", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "1999", r.Form.Get("amount"))
		assert.Equal(t, "usd", r.Form.Get("currency"))
		assert.Equal(t, "manual", r.Form.Get("capture_method"))
		assert.Equal(t, "42", r.Form.Get("metadata[orderId]"))

		writeJSON(w, http.StatusOK, `{"id":"pi_1","object":"payment_intent","status":"requires_confirmation","amount":1999,"currency":"usd","metadata":{"orderId":"42"}}`)
	})

	snap, err := p.CreatePaymentIntent(context.Background(), &outbound.PaymentIntentParams{
		Amount:        1999,
		Currency:      "USD",
		Customer:      "cus_1",
		CaptureMethod: outbound.CaptureMethodManual,
		Metadata:      map[string]string{"orderId": "42"},
	}, "abc123")

	require.NoError(t, err)
	assert.Equal(t, "pi_1", snap.String("id"))
	assert.Equal(t, "requires_confirmation", snap.String("status"))
	assert.Equal(t, "42", snap.String("metadata", "orderId"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProcessorCallsTotal.WithLabelValues("1", "create_payment_intent", "ok")))
}

func TestProcessor_Errors(t *testing.T) {
	t.Run("card decline carries the intent", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusPaymentRequired, `{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds.","payment_intent":{"id":"pi_1","object":"payment_intent","status":"requires_payment_method"}}}`)
		})

		_, err := p.ConfirmPaymentIntent(context.Background(), "pi_1", "", "abc123:confirm:pm_1")

		var decline *outbound.DeclineError
		require.True(t, errors.As(err, &decline))
		assert.Equal(t, "card_error", decline.Type)
		assert.Equal(t, "card_declined", decline.Code)
		assert.Equal(t, "insufficient_funds", decline.DeclineCode)
		assert.Equal(t, "Your card has insufficient funds.", decline.Message)
		assert.Equal(t, "pi_1", decline.Intent.String("id"))
	})

	t.Run("missing customer on create", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"type":"invalid_request_error","code":"resource_missing","param":"customer","message":"No such customer: 'cus_gone'"}}`)
		})

		_, err := p.CreatePaymentIntent(context.Background(), &outbound.PaymentIntentParams{Amount: 100, Currency: "usd", Customer: "cus_gone"}, "k")
		assert.ErrorIs(t, err, outbound.ErrCustomerDeleted)
	})

	t.Run("missing object", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"error":{"type":"invalid_request_error","code":"resource_missing","param":"id","message":"No such payment_intent: 'pi_x'"}}`)
		})

		_, err := p.RetrievePaymentIntent(context.Background(), "pi_x")
		assert.ErrorIs(t, err, outbound.ErrResourceMissing)
	})

	t.Run("server errors are unstructured", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`)
		})

		_, err := p.RetrieveInvoice(context.Background(), "in_1")
		require.Error(t, err)
		var decline *outbound.DeclineError
		assert.False(t, errors.As(err, &decline))
	})
}

func TestProcessor_Customers(t *testing.T) {
	t.Run("deleted customer", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":"cus_1","object":"customer","deleted":true}`)
		})

		_, err := p.RetrieveCustomer(context.Background(), "cus_1")
		assert.ErrorIs(t, err, outbound.ErrCustomerDeleted)
	})

	t.Run("unknown customer", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"error":{"type":"invalid_request_error","code":"resource_missing","param":"id","message":"No such customer"}}`)
		})

		_, err := p.RetrieveCustomer(context.Background(), "cus_1")
		assert.ErrorIs(t, err, outbound.ErrCustomerDeleted)
	})

	t.Run("create sends idempotency key", func(t *testing.T) {
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "customer:1:3", r.Header.Get("Idempotency-Key"))
			assert.Equal(t, "a@example.com", r.Form.Get("email"))
			assert.Equal(t, "3", r.Form.Get("metadata[userId]"))
			writeJSON(w, http.StatusOK, `{"id":"cus_2","object":"customer","email":"a@example.com"}`)
		})

		snap, err := p.CreateCustomer(context.Background(), &outbound.CustomerParams{
			Email:    "a@example.com",
			Metadata: map[string]string{"userId": "3"},
		}, "customer:1:3")
		require.NoError(t, err)
		assert.Equal(t, "cus_2", snap.String("id"))
	})
}

func TestProcessor_Breaker(t *testing.T) {
	t.Run("opens after consecutive server failures", func(t *testing.T) {
		var hits int32
		p, m := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			writeJSON(w, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`)
		})

		for i := 0; i < 3; i++ {
			_, _ = p.RetrieveInvoice(context.Background(), "in_1")
		}

		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ProcessorCallsTotal.WithLabelValues("1", "retrieve_invoice", "open")))
		assert.Equal(t, float64(2), testutil.ToFloat64(m.ProcessorBreakerState.WithLabelValues("1")))
	})

	t.Run("declines do not count as failures", func(t *testing.T) {
		var hits int32
		p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			writeJSON(w, http.StatusPaymentRequired, `{"error":{"type":"card_error","code":"card_declined","message":"declined"}}`)
		})

		for i := 0; i < 4; i++ {
			_, _ = p.ConfirmPaymentIntent(context.Background(), "pi_1", "", "k")
		}
		assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	})
}

func TestProcessor_SaveSubscription(t *testing.T) {
	p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/subscriptions/sub_1", r.URL.Path)
		assert.Equal(t, "si_1", r.Form.Get("items[0][id]"))
		assert.Equal(t, "plan_pro", r.Form.Get("items[0][plan]"))
		assert.Equal(t, "2", r.Form.Get("items[0][quantity]"))
		assert.Equal(t, "none", r.Form.Get("proration_behavior"))
		assert.Equal(t, "now", r.Form.Get("billing_cycle_anchor"))
		writeJSON(w, http.StatusOK, `{"id":"sub_1","object":"subscription","status":"active"}`)
	})

	prorate := false
	snap, err := p.SaveSubscription(context.Background(), "sub_1", &outbound.SubscriptionUpdateParams{
		ItemID:                "si_1",
		Plan:                  "plan_pro",
		Quantity:              2,
		Prorate:               &prorate,
		BillingCycleAnchorNow: true,
	}, "sub_1:switch:plan_pro:1700000000")

	require.NoError(t, err)
	assert.Equal(t, "active", snap.String("status"))
}

func TestProcessor_ListInvoices(t *testing.T) {
	p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sub_1", r.URL.Query().Get("subscription"))
		if r.URL.Query().Get("starting_after") == "" {
			writeJSON(w, http.StatusOK, `{"object":"list","url":"/v1/invoices","has_more":true,"data":[{"id":"in_1","object":"invoice","paid":true}]}`)
			return
		}
		assert.Equal(t, "in_1", r.URL.Query().Get("starting_after"))
		writeJSON(w, http.StatusOK, `{"object":"list","url":"/v1/invoices","has_more":false,"data":[{"id":"in_2","object":"invoice","paid":false}]}`)
	})

	var ids []string
	err := p.ListInvoices(context.Background(), outbound.InvoiceFilter{Subscription: "sub_1"}, func(snap model.Snapshot) error {
		ids = append(ids, snap.String("id"))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"in_1", "in_2"}, ids)
}

func TestProcessor_VerifyWebhookSignature(t *testing.T) {
	p, _ := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("signature verification must not call the API")
	})
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test"})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, p.VerifyWebhookSignature(payload, signed.Header, "whsec_test", 5*time.Minute))
	})

	t.Run("tampered payload", func(t *testing.T) {
		tampered := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","x":1}`)
		err := p.VerifyWebhookSignature(tampered, signed.Header, "whsec_test", 5*time.Minute)
		assert.ErrorIs(t, err, outbound.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := p.VerifyWebhookSignature(payload, signed.Header, "whsec_other", 5*time.Minute)
		assert.ErrorIs(t, err, outbound.ErrInvalidSignature)
	})

	t.Run("expired timestamp", func(t *testing.T) {
		old := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    "whsec_test",
			Timestamp: time.Now().Add(-time.Hour),
		})
		err := p.VerifyWebhookSignature(payload, old.Header, "whsec_test", 5*time.Minute)
		assert.ErrorIs(t, err, outbound.ErrInvalidSignature)
	})
}
