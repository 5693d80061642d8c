// Package domain defines rate-limit configuration records.
package domain

import (
	"fmt"
	"time"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// OperationWildcard configures a limit for every operation of a client that
// has no more specific entry.
const OperationWildcard = "*"

// LimitConfig sets the token-bucket parameters for a (client, operation)
// pair. Resolution walks from the exact operation to the client's wildcard
// entry to the server default.
type LimitConfig struct {
	ClientID          string `json:"client_id"`
	Operation         string `json:"operation"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	Burst             int    `json:"burst"`
}

// ErrLimitNotFound is returned when no limit config matches a
// (client id, operation) key.
var ErrLimitNotFound = apperrors.Wrap(apperrors.ErrNotFound, "rate limit config not found")

// LimitExceededError reports a denied acquisition together with the shortest
// wait after which a retry can succeed.
type LimitExceededError struct {
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// Unwrap ties the error into the shared taxonomy so callers can match it
// with errors.Is.
func (e *LimitExceededError) Unwrap() error {
	return apperrors.ErrRateLimited
}
