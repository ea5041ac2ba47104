// file: internal/server/middleware/requestid.go
// version: 1.1.0
// guid: 6c7d8e9f-0a1b-2c3d-4e5f-6a7b8c9d0e1f

package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// RequestIDKey is the gin context key carrying the request id.
const RequestIDKey = "request_id"

type requestIDCtxKey struct{}

// RequestID assigns every request a ULID, honoring an inbound X-Request-ID
// so callers can thread their own ids through. The id is attached to both
// the gin context and the request context, so service-layer code sees it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), requestIDCtxKey{}, id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestIDFromContext returns the id attached by RequestID, or "" for
// contexts that never passed through the middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}
