// Package app provides the dependency injection container assembling the
// gateway components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/allisson/gatekeeper/internal/clock"
	"github.com/allisson/gatekeeper/internal/config"
	"github.com/allisson/gatekeeper/internal/database"
	"github.com/allisson/gatekeeper/internal/http"
	"github.com/allisson/gatekeeper/internal/metrics"
	"github.com/allisson/gatekeeper/internal/scheduler"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger        *slog.Logger
	clock         clock.Clock
	db            *sql.DB
	archiveBucket *blob.Bucket

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Security components, held in the security part of the container.
	security securityComponents

	// Background maintenance
	scheduler *scheduler.Scheduler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	clockInit           sync.Once
	dbInit              sync.Once
	archiveBucketInit   sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	schedulerInit       sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the shared wall clock.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.New()
	})
	return c.clock
}

// DB returns the database connection for the SQL store backends.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.StoreDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// ArchiveBucket returns the blob bucket rotated audit files are uploaded to,
// or nil when archiving is not configured.
func (c *Container) ArchiveBucket() (*blob.Bucket, error) {
	c.archiveBucketInit.Do(func() {
		if c.config.AuditArchiveBucketURL == "" {
			return
		}
		bucket, err := blob.OpenBucket(context.Background(), c.config.AuditArchiveBucketURL)
		if err != nil {
			c.initErrors["archiveBucket"] = fmt.Errorf("failed to open archive bucket: %w", err)
			return
		}
		c.archiveBucket = bucket
	})
	if err, exists := c.initErrors["archiveBucket"]; exists {
		return nil, err
	}
	return c.archiveBucket, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the pipeline outcome metrics, a no-op implementation
// when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// Scheduler returns the maintenance scheduler with the periodic sweeps
// registered: expired sessions, stale failure counters, idle rate-limit
// buckets, and audit retention.
func (c *Container) Scheduler() (*scheduler.Scheduler, error) {
	c.schedulerInit.Do(func() {
		authenticator, err := c.Authenticator()
		if err != nil {
			c.initErrors["scheduler"] = err
			return
		}
		rateLimiter, err := c.RateLimiter()
		if err != nil {
			c.initErrors["scheduler"] = err
			return
		}
		auditLogger, err := c.AuditLogger()
		if err != nil {
			c.initErrors["scheduler"] = err
			return
		}

		sched := scheduler.New(c.Clock(), c.Logger())
		sched.Register(scheduler.Task{
			Name:     "session-sweep",
			Interval: c.config.SessionSweepInterval,
			Run:      authenticator.SweepExpiredSessions,
		})
		sched.Register(scheduler.Task{
			Name:     "failure-counter-prune",
			Interval: c.config.SessionSweepInterval,
			Run:      authenticator.PruneFailureCounters,
		})
		sched.Register(scheduler.Task{
			Name:     "rate-limit-bucket-sweep",
			Interval: c.config.RateLimitSweepInterval,
			Run:      rateLimiter.SweepIdleBuckets,
		})
		sched.Register(scheduler.Task{
			Name:     "audit-rotation-check",
			Interval: time.Minute,
			Run:      auditLogger.RotateIfDue,
		})
		sched.Register(scheduler.Task{
			Name:     "audit-retention-sweep",
			Interval: time.Hour,
			Run:      auditLogger.SweepRetention,
		})
		c.scheduler = sched
	})
	if err, exists := c.initErrors["scheduler"]; exists {
		return nil, err
	}
	return c.scheduler, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources. It should be called
// when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.scheduler != nil {
		c.scheduler.Stop()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Close the audit logger after the servers so in-flight requests can still
	// record their entries.
	if c.security.auditLogger != nil {
		if err := c.security.auditLogger.Close(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("audit logger close: %w", err))
		}
	}

	if c.archiveBucket != nil {
		if err := c.archiveBucket.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("archive bucket close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	securityPipeline, err := c.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline for http server: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for http server: %w", err)
	}
	clientUseCase, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for http server: %w", err)
	}
	ruleEngine, err := c.RuleEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get rule engine for http server: %w", err)
	}
	rateLimiter, err := c.RateLimiter()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limiter for http server: %w", err)
	}
	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for http server: %w", err)
	}

	handlers := http.Handlers{
		Invoke: http.NewInvokeHandler(securityPipeline, businessMetrics, logger),
		Client: http.NewClientHandler(clientUseCase, logger),
		Rule:   http.NewRuleHandler(ruleEngine, logger),
		Limit:  http.NewLimitHandler(rateLimiter, logger),
		Audit:  http.NewAuditHandler(auditLogger, logger),
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	if provider != nil {
		return http.NewServer(c.config, handlers, provider.MeterProvider(), logger), nil
	}
	return http.NewServer(c.config, handlers, nil, logger), nil
}
