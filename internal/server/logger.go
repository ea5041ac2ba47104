// file: internal/server/logger.go
// version: 2.1.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jdfalk/fund-discovery/internal/server/middleware"
)

// ServiceLogger provides logging for service layer operations
type ServiceLogger struct {
	serviceName string
	requestID   string
}

// NewServiceLogger creates a new service logger
func NewServiceLogger(serviceName, requestID string) *ServiceLogger {
	return &ServiceLogger{
		serviceName: serviceName,
		requestID:   requestID,
	}
}

// serviceLoggerFor binds a logger to the request id carried in ctx.
func serviceLoggerFor(ctx context.Context, serviceName string) *ServiceLogger {
	return NewServiceLogger(serviceName, middleware.RequestIDFromContext(ctx))
}

// LogOperation logs the execution of a service operation
func (sl *ServiceLogger) LogOperation(operation string, details map[string]any) {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf(" %v", details)
	}
	log.Printf("[SERVICE] %s.%s%s [request-id: %s]",
		sl.serviceName, operation, detailStr, sl.requestID)
}

// LogError logs an error from the service
func (sl *ServiceLogger) LogError(operation string, err error) {
	log.Printf("[SERVICE-ERROR] %s.%s: %v [request-id: %s]",
		sl.serviceName, operation, err, sl.requestID)
}

// LogDebounceWait logs that a suggestion request is sitting in its window
func (sl *ServiceLogger) LogDebounceWait(key string) {
	log.Printf("[SERVICE-DEBUG] %s.suggest: waiting out debounce window for %s [request-id: %s]",
		sl.serviceName, key, sl.requestID)
}

// LogStoreOperation logs a catalog operation with its performance
func LogStoreOperation(operation string, duration time.Duration, count int, err error) {
	if err != nil {
		log.Printf("[STORE-ERROR] %s failed in %v: %v", operation, duration, err)
		return
	}
	log.Printf("[STORE] %s completed in %v (%d funds)", operation, duration, count)
}
