// Package http provides the Gin HTTP server, the pipeline endpoint, and the
// administrative surface.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/gatekeeper/internal/config"
	"github.com/allisson/gatekeeper/internal/metrics"
)

// Handlers groups the route handlers mounted by the server.
type Handlers struct {
	Invoke *InvokeHandler
	Client *ClientHandler
	Rule   *RuleHandler
	Limit  *LimitHandler
	Audit  *AuditHandler
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates the API server and mounts all routes. The meter provider
// is optional; without it no HTTP metrics are recorded.
func NewServer(
	cfg *config.Config,
	handlers Handlers,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/invoke", handlers.Invoke.Handler)
	}

	admin := router.Group("/admin")
	admin.Use(AdminAuthMiddleware(cfg.AdminCredential, logger))
	{
		admin.POST("/clients", handlers.Client.CreateHandler)
		admin.GET("/clients", handlers.Client.ListHandler)
		admin.GET("/clients/:id", handlers.Client.GetHandler)
		admin.PUT("/clients/:id", handlers.Client.UpdateHandler)
		admin.POST("/clients/:id/disable", handlers.Client.DisableHandler)
		admin.POST("/clients/:id/rotate-secret", handlers.Client.RotateSecretHandler)

		admin.PUT("/rules", handlers.Rule.UpsertHandler)
		admin.DELETE("/rules", handlers.Rule.DeleteHandler)
		admin.GET("/rules", handlers.Rule.ListHandler)

		admin.PUT("/rate-limits", handlers.Limit.UpsertHandler)
		admin.DELETE("/rate-limits", handlers.Limit.DeleteHandler)
		admin.GET("/rate-limits", handlers.Limit.ListHandler)

		admin.GET("/audit-logs", handlers.Audit.QueryHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
