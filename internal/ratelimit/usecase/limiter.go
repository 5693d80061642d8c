package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/allisson/gatekeeper/internal/clock"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

// RateLimiterConfig carries the server defaults applied when no stored config
// matches a (client, operation) pair.
type RateLimiterConfig struct {
	DefaultRequestsPerMinute int
	DefaultBurst             int
	IdleTimeout              time.Duration
}

type bucketKey struct {
	clientID  string
	operation string
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// rateLimiter implements RateLimiter. Buckets are created lazily on first
// acquisition with the config resolved at that moment; a config change resets
// the client's buckets so the new parameters take effect immediately.
type rateLimiter struct {
	cfg       RateLimiterConfig
	limitRepo LimitRepository
	clock     clock.Clock
	logger    *slog.Logger

	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

// NewRateLimiter creates a RateLimiter over the given config repository.
func NewRateLimiter(
	cfg RateLimiterConfig,
	limitRepo LimitRepository,
	clk clock.Clock,
	logger *slog.Logger,
) RateLimiter {
	return &rateLimiter{
		cfg:       cfg,
		limitRepo: limitRepo,
		clock:     clk,
		logger:    logger,
		buckets:   make(map[bucketKey]*bucket),
	}
}

// TryAcquire consumes one token from the pair's bucket. The bucket refills
// continuously at the configured per-minute rate up to its burst capacity.
func (r *rateLimiter) TryAcquire(ctx context.Context, clientID, operation string) error {
	now := r.clock.Now()
	b := r.bucket(ctx, clientID, operation, now)

	r.mu.Lock()
	defer r.mu.Unlock()

	b.lastUsed = now
	if b.limiter.AllowN(now, 1) {
		return nil
	}

	// Reserve to learn the shortest wait, then cancel so the probe does not
	// consume future tokens
	reservation := b.limiter.ReserveN(now, 1)
	retryAfter := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	return &ratelimitDomain.LimitExceededError{RetryAfter: retryAfter}
}

// SetLimit stores the config and resets the affected buckets.
func (r *rateLimiter) SetLimit(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	if config.ClientID == "" || config.Operation == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "client id and operation must not be empty")
	}
	if config.RequestsPerMinute <= 0 || config.Burst <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "requests per minute and burst must be positive")
	}

	if err := r.limitRepo.Upsert(ctx, config); err != nil {
		return err
	}

	r.resetClientBuckets(config.ClientID)
	return nil
}

// DeleteLimit removes the config and resets the affected buckets.
func (r *rateLimiter) DeleteLimit(ctx context.Context, clientID, operation string) error {
	if err := r.limitRepo.Delete(ctx, clientID, operation); err != nil {
		return err
	}

	r.resetClientBuckets(clientID)
	return nil
}

// ListLimits retrieves configs with pagination support.
func (r *rateLimiter) ListLimits(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	return r.limitRepo.List(ctx, offset, limit)
}

// SweepIdleBuckets drops buckets not used within the idle timeout. A dropped
// bucket starts full again when the pair next appears.
func (r *rateLimiter) SweepIdleBuckets(ctx context.Context) {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, b := range r.buckets {
		if now.Sub(b.lastUsed) >= r.cfg.IdleTimeout {
			delete(r.buckets, key)
		}
	}
}

// bucket returns the pair's bucket, creating it from the resolved config when
// absent.
func (r *rateLimiter) bucket(ctx context.Context, clientID, operation string, now time.Time) *bucket {
	key := bucketKey{clientID: clientID, operation: operation}

	r.mu.Lock()
	if b, ok := r.buckets[key]; ok {
		r.mu.Unlock()
		return b
	}
	r.mu.Unlock()

	rpm, burst := r.resolve(ctx, clientID, operation)
	b := &bucket{
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		lastUsed: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.buckets[key]; ok {
		return existing
	}
	r.buckets[key] = b
	return b
}

// resolve walks the config precedence: exact operation, then the client's
// wildcard entry, then the server default. Lookup failures other than absence
// fall back to the default.
func (r *rateLimiter) resolve(ctx context.Context, clientID, operation string) (rpm, burst int) {
	for _, op := range []string{operation, ratelimitDomain.OperationWildcard} {
		config, err := r.limitRepo.Get(ctx, clientID, op)
		if err == nil {
			return config.RequestsPerMinute, config.Burst
		}
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			r.logger.Error("rate limit config lookup failed, using default",
				slog.String("client_id", clientID),
				slog.String("operation", op),
				slog.Any("error", err))
			break
		}
	}
	return r.cfg.DefaultRequestsPerMinute, r.cfg.DefaultBurst
}

func (r *rateLimiter) resetClientBuckets(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.buckets {
		if key.clientID == clientID {
			delete(r.buckets, key)
		}
	}
}
