// Package scheduler runs the periodic maintenance tasks registered by the
// security components (session sweep, lockout pruning, bucket eviction, audit
// rotation and retention) on a single, testable timer facility.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/gatekeeper/internal/clock"
)

// Task is one registered periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler owns the background maintenance loops. Tasks are registered before
// Start; each runs on its own ticker until the start context is cancelled or
// Stop is called.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []Task
	cancel  context.CancelFunc
	done    sync.WaitGroup
	started bool
}

// New creates a Scheduler using the provided clock.
func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:  clk,
		logger: logger,
	}
}

// Register adds a periodic task. Must be called before Start; registrations
// after Start are ignored and logged.
func (s *Scheduler) Register(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.logger.Warn("scheduler: task registered after start, ignoring",
			slog.String("task", task.Name))
		return
	}
	s.tasks = append(s.tasks, task)
}

// Start launches one goroutine per registered task.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)

	for _, task := range s.tasks {
		s.done.Add(1)
		go s.loop(ctx, task)
	}

	s.logger.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
}

// Stop cancels all task loops and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.done.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.done.Done()

	ticks, stop := s.clock.Ticker(task.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			task.Run(ctx)
		}
	}
}
