package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Webhook metrics
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookHandlerDuration *prometheus.HistogramVec

	// Processor metrics
	ProcessorCallsTotal   *prometheus.CounterVec
	ProcessorCallDuration *prometheus.HistogramVec
	ProcessorBreakerState *prometheus.GaugeVec

	// Charge metrics
	ChargeResultsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New creates a new Metrics instance registered with the default registry.
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance registered with reg.
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "paysync"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Webhook metrics
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "events_total",
				Help:      "Total number of webhook deliveries",
			},
			[]string{"gateway", "type", "outcome"}, // outcome: handled, failed, unhandled, duplicate, unverified, degraded, malformed
		),
		WebhookHandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "handler_duration_seconds",
				Help:      "Webhook handler duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"gateway", "type"},
		),

		// Processor metrics
		ProcessorCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "calls_total",
				Help:      "Total number of payment processor calls",
			},
			[]string{"gateway", "operation", "outcome"}, // outcome: ok, declined, missing, error, open
		),
		ProcessorCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "call_duration_seconds",
				Help:      "Payment processor call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"gateway", "operation"},
		),
		ProcessorBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "processor",
				Name:      "breaker_state",
				Help:      "Processor circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"gateway"},
		),

		// Charge metrics
		ChargeResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "results_total",
				Help:      "Total number of classified charge results",
			},
			[]string{"gateway", "operation", "result"}, // result: successful, processing, redirect, failed, error
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWebhookEvent records the outcome of a webhook delivery.
func (m *Metrics) RecordWebhookEvent(gatewayID int64, eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.WebhookEventsTotal.WithLabelValues(gatewayLabel(gatewayID), eventType, outcome).Inc()
}

// RecordWebhookHandler records how long a webhook handler ran.
func (m *Metrics) RecordWebhookHandler(gatewayID int64, eventType string, duration time.Duration) {
	m.WebhookHandlerDuration.WithLabelValues(gatewayLabel(gatewayID), eventType).Observe(duration.Seconds())
}

// RecordProcessorCall records a payment processor call.
func (m *Metrics) RecordProcessorCall(gatewayID int64, operation, outcome string, duration time.Duration) {
	gw := gatewayLabel(gatewayID)
	m.ProcessorCallsTotal.WithLabelValues(gw, operation, outcome).Inc()
	m.ProcessorCallDuration.WithLabelValues(gw, operation).Observe(duration.Seconds())
}

// SetBreakerState sets the circuit breaker state of a gateway.
func (m *Metrics) SetBreakerState(gatewayID int64, state int) {
	m.ProcessorBreakerState.WithLabelValues(gatewayLabel(gatewayID)).Set(float64(state))
}

// RecordChargeResult records a classified charge result.
func (m *Metrics) RecordChargeResult(gatewayID int64, operation, result string) {
	m.ChargeResultsTotal.WithLabelValues(gatewayLabel(gatewayID), operation, result).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func gatewayLabel(id int64) string {
	return strconv.FormatInt(id, 10)
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
