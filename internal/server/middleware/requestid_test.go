// file: internal/server/middleware/requestid_test.go
// version: 1.1.0
// guid: 7d8e9f0a-1b2c-3d4e-5f6a-7b8c9d0e1f2a

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDGenerated(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		id, ok := c.Get(RequestIDKey)
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, resp.Header().Get("X-Request-ID"), 26) // ULID length
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		assert.Equal(t, "ctx-threaded-id", RequestIDFromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "ctx-threaded-id")
	router.ServeHTTP(httptest.NewRecorder(), req)

	// Contexts outside the middleware carry no id.
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestRequestIDHonorsInbound(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, "caller-supplied-id", resp.Header().Get("X-Request-ID"))
}
