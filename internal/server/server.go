// file: internal/server/server.go
// version: 2.1.0
// guid: 5b6c7d8e-9f0a-1b2c-3d4e-5f6a7b8c9d0e

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/fund-discovery/internal/cache"
	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/config"
	"github.com/jdfalk/fund-discovery/internal/metrics"
	"github.com/jdfalk/fund-discovery/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      catalog.Store

	searchSvc     *SearchService
	comparisonSvc *ComparisonService
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new server instance over the given catalog store.
func NewServer(store catalog.Store, cfg config.Config) (*Server, error) {
	router := gin.New()

	// Set up middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware())

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	router.Use(limiter.Middleware())

	// Register metrics (idempotent)
	metrics.Register()

	backend := cache.NewMemoryBackend(cfg.SearchCacheTTL)
	searchSvc, err := NewSearchService(store, cfg, backend)
	if err != nil {
		return nil, fmt.Errorf("search service: %w", err)
	}

	server := &Server{
		router:        router,
		store:         store,
		searchSvc:     searchSvc,
		comparisonSvc: NewComparisonService(store, cfg, backend),
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Refresh the catalog gauge periodically while running
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				begin := time.Now()
				count, err := s.store.CountFunds(ctx)
				cancel()
				LogStoreOperation("count_funds", time.Since(begin), count, err)
				if err != nil {
					continue
				}
				metrics.SetFunds(count)
			case <-quit:
				return
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/search/funds", s.searchFunds)
		api.GET("/search/suggest", s.suggestFunds)
		api.GET("/search/by-tags", s.searchByTags)

		api.POST("/comparison/compare", s.compareFunds)
		api.POST("/comparison/overlap", s.overlapFunds)
	}
}

// corsMiddleware allows browser clients on other origins to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
