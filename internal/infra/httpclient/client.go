package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"

	"github.com/uniedit/paysync/internal/infra/config"
	"github.com/uniedit/paysync/internal/infra/logger"
)

// New creates the pooled HTTP client shared by all processor backends.
// Outbound calls carry the inbound request id.
func New(cfg config.HTTPClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &requestIDTransport{next: transport},
		Timeout:   cfg.ResponseTimeout,
	}
}

// requestIDTransport copies the context request id onto outbound requests.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := logger.RequestID(req.Context())
	if id == "" || req.Header.Get("X-Request-ID") != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", id)
	return t.next.RoundTrip(req)
}
