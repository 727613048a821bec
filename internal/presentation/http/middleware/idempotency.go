package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/dedup"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long a finished response is replayed
	IdempotencyKeyTTL = 10 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	// Pending holds the keys of requests still being handled.
	Pending *dedup.Registry
	// Size bounds the number of replayable responses kept.
	Size int
	TTL  time.Duration
}

type storedResponse struct {
	code int
	body []byte
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency rejects a mutating request while an identical one from the
// same user is still in flight. A request carrying an Idempotency-Key that
// already finished successfully gets the stored response back.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.Pending == nil {
		config.Pending = dedup.New()
	}
	if config.Size <= 0 {
		config.Size = 256
	}
	if config.TTL <= 0 {
		config.TTL = IdempotencyKeyTTL
	}
	done := expirable.NewLRU[string, storedResponse](config.Size, nil, config.TTL)

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			c.Next()
			return
		}

		username := c.GetString(ContextUsername)
		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)

		key := username + "|" + c.Request.Method + " " + c.Request.URL.Path
		if idempotencyKey != "" {
			key += "|" + idempotencyKey
			if stored, ok := done.Get(key); ok {
				c.Header("X-Idempotency-Replayed", "true")
				c.Data(stored.code, "application/json; charset=utf-8", stored.body)
				c.Abort()
				return
			}
		}

		release, ok := config.Pending.Acquire(key)
		if !ok {
			response.Error(c, apperror.NewDuplicateRequestError(""))
			c.Abort()
			return
		}
		defer release()

		if idempotencyKey == "" {
			c.Next()
			return
		}

		// Capture the response
		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only store successful responses (2xx status codes)
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			done.Add(key, storedResponse{code: status, body: blw.body.Bytes()})
		}
	}
}
