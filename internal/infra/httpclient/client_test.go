package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/paysync/internal/infra/config"
	"github.com/uniedit/paysync/internal/infra/logger"
)

func TestNew_PropagatesRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
	}))
	defer srv.Close()

	client := New(config.HTTPClientConfig{ResponseTimeout: 5 * time.Second, DialTimeout: time.Second})

	t.Run("with id", func(t *testing.T) {
		ctx := logger.WithRequestID(context.Background(), "req-42")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "req-42", got)
		assert.Empty(t, req.Header.Get("X-Request-ID"))
	})

	t.Run("without id", func(t *testing.T) {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Empty(t, got)
	})
}
