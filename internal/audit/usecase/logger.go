package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gocloud.dev/blob"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/clock"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// AuditLoggerConfig carries the file layout and queue parameters.
type AuditLoggerConfig struct {
	Dir              string
	Cadence          RotationCadence
	MaxFileSizeBytes int64
	CompressRotated  bool
	RetentionDays    int
	QueueSize        int
	RedactedFields   []string
}

type queueOp int

const (
	opWrite queueOp = iota
	opFlush
	opRotate
	opSweep
)

type queueItem struct {
	op      queueOp
	entry   *auditDomain.Entry
	barrier chan struct{}
}

// auditLogger implements AuditLogger with a buffered queue drained by a
// single worker goroutine, so request handling never blocks on disk I/O.
type auditLogger struct {
	cfg    AuditLoggerConfig
	sink   *fileSink
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan queueItem
	done   chan struct{}
}

// NewAuditLogger starts the worker and returns the logger. The archive bucket
// is optional; rotated files are uploaded to it when set.
func NewAuditLogger(
	cfg AuditLoggerConfig,
	archive *blob.Bucket,
	clk clock.Clock,
	logger *slog.Logger,
) AuditLogger {
	a := &auditLogger{
		cfg: cfg,
		sink: &fileSink{
			dir:           cfg.Dir,
			cadence:       cfg.Cadence,
			maxFileSize:   cfg.MaxFileSizeBytes,
			compress:      cfg.CompressRotated,
			retentionDays: cfg.RetentionDays,
			archive:       archive,
			clock:         clk,
			logger:        logger,
		},
		clock:  clk,
		logger: logger,
		queue:  make(chan queueItem, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	go a.worker()
	return a
}

// Record enqueues the entry without blocking. Missing id and timestamp are
// filled in, and sensitive metadata fields are redacted before the entry
// enters the queue.
func (a *auditLogger) Record(entry *auditDomain.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = a.clock.Now()
	}
	entry.Metadata = auditDomain.RedactMetadata(entry.Metadata, a.cfg.RedactedFields)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.logger.Warn("audit logger closed, dropping entry",
			slog.String("operation", entry.Operation))
		return
	}

	select {
	case a.queue <- queueItem{op: opWrite, entry: entry}:
	default:
		a.logger.Warn("audit queue full, dropping entry",
			slog.String("client_id", entry.ClientID),
			slog.String("operation", entry.Operation))
	}
}

// RotateIfDue asks the worker to finalize the active file when its calendar
// period has lapsed. Without it a quiet period would leave the last file
// uncompressed and unarchived until the next write.
func (a *auditLogger) RotateIfDue(ctx context.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return
	}

	select {
	case a.queue <- queueItem{op: opRotate}:
	case <-ctx.Done():
	}
}

// SweepRetention asks the worker to remove expired files.
func (a *auditLogger) SweepRetention(ctx context.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return
	}

	select {
	case a.queue <- queueItem{op: opSweep}:
	case <-ctx.Done():
	}
}

// Close stops accepting entries, drains the queue, and waits for the worker.
func (a *auditLogger) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), "audit logger shutdown interrupted")
	}
}

// barrier waits until the worker has processed everything enqueued before it
// and flushed the active file.
func (a *auditLogger) barrier(ctx context.Context) error {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return nil
	}

	item := queueItem{op: opFlush, barrier: make(chan struct{})}
	select {
	case a.queue <- item:
		a.mu.RUnlock()
	case <-ctx.Done():
		a.mu.RUnlock()
		return apperrors.Wrap(ctx.Err(), "audit flush interrupted")
	}

	select {
	case <-item.barrier:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), "audit flush interrupted")
	}
}

func (a *auditLogger) worker() {
	defer close(a.done)

	for item := range a.queue {
		switch item.op {
		case opWrite:
			if err := a.sink.write(item.entry); err != nil {
				a.logger.Error("failed to write audit entry", slog.Any("error", err))
			}
		case opFlush:
			if err := a.sink.flush(); err != nil {
				a.logger.Error("failed to flush audit file", slog.Any("error", err))
			}
			close(item.barrier)
		case opRotate:
			if err := a.sink.rotateIfDue(a.clock.Now()); err != nil {
				a.logger.Error("failed to rotate audit file", slog.Any("error", err))
			}
		case opSweep:
			a.sink.sweepRetention(a.clock.Now())
		}
	}

	if err := a.sink.closeActive(false); err != nil {
		a.logger.Error("failed to close audit file", slog.Any("error", err))
	}
}
