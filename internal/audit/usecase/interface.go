// Package usecase implements asynchronous audit logging over NDJSON files
// with rotation, compression, retention, and query support.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
)

// QueryFilter narrows an audit query. Zero-valued fields match everything.
// Offset skips that many matching entries before any are collected, counted
// newest first.
type QueryFilter struct {
	ClientID  string
	Operation string
	Status    string
	Since     time.Time
	Until     time.Time
	Offset    int
	Limit     int
}

// DefaultQueryLimit caps a query that does not set its own limit.
const DefaultQueryLimit = 100

// AuditLogger records entries asynchronously and serves queries over the
// written files.
type AuditLogger interface {
	// Record enqueues the entry without blocking. When the queue is full the
	// entry is dropped and the drop is logged.
	Record(entry *auditDomain.Entry)

	// Query returns entries matching the filter, newest first. Pending writes
	// are flushed before the files are read.
	Query(ctx context.Context, filter QueryFilter) ([]*auditDomain.Entry, error)

	// RotateIfDue finalizes the active file once its calendar period has
	// lapsed, so quiet periods are compressed and archived without waiting
	// for the next write.
	RotateIfDue(ctx context.Context)

	// SweepRetention removes rotated files older than the retention window.
	SweepRetention(ctx context.Context)

	// Close drains the queue, flushes, and stops the worker.
	Close(ctx context.Context) error
}
