// Package usecase implements token-bucket rate limiting per client and
// operation.
package usecase

import (
	"context"

	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

// LimitRepository defines persistence operations for rate-limit configs,
// keyed by (client id, operation).
type LimitRepository interface {
	// Upsert adds a config or replaces the one sharing its key.
	Upsert(ctx context.Context, config *ratelimitDomain.LimitConfig) error

	// Delete removes the config with the given key. Returns ErrLimitNotFound
	// when absent.
	Delete(ctx context.Context, clientID, operation string) error

	// Get retrieves the config with the given key. Returns ErrLimitNotFound
	// when absent.
	Get(ctx context.Context, clientID, operation string) (*ratelimitDomain.LimitConfig, error)

	// List retrieves configs ordered by key with pagination support.
	List(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error)
}

// RateLimiter admits or rejects operations against per-(client, operation)
// token buckets and exposes the limit management operations.
type RateLimiter interface {
	// TryAcquire consumes one token from the pair's bucket. When the bucket is
	// empty it returns a LimitExceededError carrying the retry-after hint.
	TryAcquire(ctx context.Context, clientID, operation string) error

	SetLimit(ctx context.Context, config *ratelimitDomain.LimitConfig) error
	DeleteLimit(ctx context.Context, clientID, operation string) error
	ListLimits(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error)

	// SweepIdleBuckets drops buckets not used within the idle timeout.
	SweepIdleBuckets(ctx context.Context)
}
