package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/gatekeeper/internal/app"
	"github.com/allisson/gatekeeper/internal/config"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	ratelimitUseCase "github.com/allisson/gatekeeper/internal/ratelimit/usecase"
)

// RunSetRateLimit adds or replaces a rate limit for a (client, operation)
// pair. Use "*" as the operation for a client-wide default.
func RunSetRateLimit(ctx context.Context, clientID, operation string, requestsPerMinute, burst int, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rateLimiter, err := container.RateLimiter()
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	return setRateLimit(ctx, rateLimiter, logger, clientID, operation, requestsPerMinute, burst, format, ioTuple)
}

func setRateLimit(
	ctx context.Context,
	rateLimiter ratelimitUseCase.RateLimiter,
	logger *slog.Logger,
	clientID string,
	operation string,
	requestsPerMinute int,
	burst int,
	format string,
	ioTuple IOTuple,
) error {
	limitConfig := &ratelimitDomain.LimitConfig{
		ClientID:          clientID,
		Operation:         operation,
		RequestsPerMinute: requestsPerMinute,
		Burst:             burst,
	}

	if err := rateLimiter.SetLimit(ctx, limitConfig); err != nil {
		return fmt.Errorf("failed to set rate limit: %w", err)
	}

	if format == "json" {
		outputJSON(limitConfig, ioTuple.Writer)
	} else {
		_, _ = fmt.Fprintf(
			ioTuple.Writer,
			"Rate limit set for client %s on %s: %d req/min, burst %d\n",
			clientID,
			operation,
			requestsPerMinute,
			burst,
		)
	}

	logger.Info("rate limit set",
		slog.String("client_id", clientID),
		slog.String("operation", operation),
		slog.Int("requests_per_minute", requestsPerMinute),
		slog.Int("burst", burst),
	)
	return nil
}

// RunDeleteRateLimit removes the rate limit keyed by client id and operation.
func RunDeleteRateLimit(ctx context.Context, clientID, operation string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rateLimiter, err := container.RateLimiter()
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	if err := rateLimiter.DeleteLimit(ctx, clientID, operation); err != nil {
		return fmt.Errorf("failed to delete rate limit: %w", err)
	}

	_, _ = fmt.Fprintf(ioTuple.Writer, "Rate limit deleted for client %s on %s\n", clientID, operation)

	logger.Info("rate limit deleted",
		slog.String("client_id", clientID),
		slog.String("operation", operation),
	)
	return nil
}

// RunListRateLimits prints configured rate limits with pagination.
func RunListRateLimits(ctx context.Context, offset, limit int, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rateLimiter, err := container.RateLimiter()
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	return listRateLimits(ctx, rateLimiter, logger, offset, limit, format, ioTuple)
}

func listRateLimits(
	ctx context.Context,
	rateLimiter ratelimitUseCase.RateLimiter,
	logger *slog.Logger,
	offset int,
	limit int,
	format string,
	ioTuple IOTuple,
) error {
	limits, err := rateLimiter.ListLimits(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list rate limits: %w", err)
	}

	if format == "json" {
		outputJSON(limits, ioTuple.Writer)
	} else {
		if len(limits) == 0 {
			_, _ = fmt.Fprintln(ioTuple.Writer, "No rate limits found")
		}
		for _, limitConfig := range limits {
			_, _ = fmt.Fprintf(
				ioTuple.Writer,
				"%s\t%s\t%d req/min\tburst %d\n",
				limitConfig.ClientID,
				limitConfig.Operation,
				limitConfig.RequestsPerMinute,
				limitConfig.Burst,
			)
		}
	}

	logger.Info("rate limits listed", slog.Int("count", len(limits)))
	return nil
}
