package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/paysync/internal/port/outbound"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "Idempotent-Replayed"

	defaultIdempotencyTTL  = 24 * time.Hour
	idempotencyLockTTL     = 30 * time.Second
	maxIdempotencyKeyBytes = 255
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is how long a response is replayed for its key.
	TTL time.Duration
}

// idempotencyResponseWriter captures the response body.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a client repeats a POST with
// the same Idempotency-Key. Keys are scoped to the caller and the route; a
// reused key with a different body is rejected. Cache failures let the
// request through.
func Idempotency(cache outbound.IdempotencyCachePort, cfg IdempotencyConfig, log *zap.Logger) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		clientKey := c.GetHeader(IdempotencyKeyHeader)
		if cache == nil || c.Request.Method != http.MethodPost || clientKey == "" {
			c.Next()
			return
		}
		if len(clientKey) > maxIdempotencyKeyBytes {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_IDEMPOTENCY_KEY",
					"message": "Idempotency-Key is too long",
				},
			})
			return
		}

		ctx := c.Request.Context()
		key := idempotencyCacheKey(c, clientKey)
		bodyHash := bodyHashKey(c)

		cached, err := cache.Load(ctx, key)
		if err != nil {
			log.Warn("idempotency cache unavailable", zap.Error(err))
			c.Next()
			return
		}
		if cached != nil {
			if cached.BodyHash != bodyHash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
					"error": gin.H{
						"code":    "IDEMPOTENCY_KEY_REUSED",
						"message": "Idempotency-Key was already used with a different request body",
					},
				})
				return
			}
			for k, v := range cached.Headers {
				c.Header(k, v)
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(cached.StatusCode, cached.Headers["Content-Type"], cached.Body)
			c.Abort()
			return
		}

		locked, err := cache.Lock(ctx, key, idempotencyLockTTL)
		if err != nil {
			log.Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": gin.H{
					"code":    "REQUEST_IN_PROGRESS",
					"message": "A request with this idempotency key is already being processed",
				},
			})
			return
		}
		defer func() {
			if err := cache.Unlock(ctx, key); err != nil {
				log.Warn("idempotency unlock failed", zap.Error(err))
			}
		}()

		writer := &idempotencyResponseWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 500 {
			return
		}
		headers := make(map[string]string, len(writer.Header()))
		for k := range writer.Header() {
			headers[k] = writer.Header().Get(k)
		}
		resp := &outbound.CachedResponse{
			StatusCode: status,
			Headers:    headers,
			Body:       writer.body.Bytes(),
			BodyHash:   bodyHash,
		}
		if err := cache.Store(ctx, key, resp, cfg.TTL); err != nil {
			log.Warn("idempotency store failed", zap.Error(err))
		}
	}
}

// idempotencyCacheKey scopes a client key to the caller and the route.
func idempotencyCacheKey(c *gin.Context, clientKey string) string {
	scope := strconv.FormatInt(GetUserID(c), 10) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + clientKey
	hash := sha256.Sum256([]byte(scope))
	return hex.EncodeToString(hash[:])
}

// bodyHashKey hashes the request body and restores it for the handler.
func bodyHashKey(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
