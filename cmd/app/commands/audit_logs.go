package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/gatekeeper/internal/app"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	"github.com/allisson/gatekeeper/internal/config"
)

// RunQueryAuditLogs prints audit entries matching the filters, newest first.
// Since and until accept RFC 3339 timestamps; offset skips that many matches.
func RunQueryAuditLogs(ctx context.Context, clientID, operation, status, since, until string, offset, limit int, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	auditLogger, err := container.AuditLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}

	filter := auditUseCase.QueryFilter{
		ClientID:  clientID,
		Operation: operation,
		Status:    status,
		Offset:    offset,
		Limit:     limit,
	}

	if since != "" {
		sinceTime, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("failed to parse since timestamp: %w", err)
		}
		filter.Since = sinceTime
	}

	if until != "" {
		untilTime, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return fmt.Errorf("failed to parse until timestamp: %w", err)
		}
		filter.Until = untilTime
	}

	return queryAuditLogs(ctx, auditLogger, logger, filter, format, ioTuple)
}

func queryAuditLogs(
	ctx context.Context,
	auditLogger auditUseCase.AuditLogger,
	logger *slog.Logger,
	filter auditUseCase.QueryFilter,
	format string,
	ioTuple IOTuple,
) error {
	entries, err := auditLogger.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query audit logs: %w", err)
	}

	if format == "json" {
		outputJSON(entries, ioTuple.Writer)
	} else {
		if len(entries) == 0 {
			_, _ = fmt.Fprintln(ioTuple.Writer, "No audit entries found")
		}
		for _, entry := range entries {
			_, _ = fmt.Fprintf(
				ioTuple.Writer,
				"%s\t%s\t%s\t%s\t%s\n",
				entry.Timestamp.Format(time.RFC3339),
				entry.ClientID,
				entry.Operation,
				entry.Resource,
				entry.Status,
			)
		}
	}

	logger.Info("audit logs queried", slog.Int("count", len(entries)))
	return nil
}

// RunCleanAuditLogs removes rotated audit files older than the configured
// retention window.
func RunCleanAuditLogs(ctx context.Context, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	auditLogger, err := container.AuditLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}

	logger.Info("cleaning audit logs", slog.Int("retention_days", cfg.AuditRetentionDays))

	auditLogger.SweepRetention(ctx)

	_, _ = fmt.Fprintf(
		ioTuple.Writer,
		"Removed audit files older than %d days\n",
		cfg.AuditRetentionDays,
	)
	return nil
}
