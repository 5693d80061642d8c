package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/gatekeeper/internal/clock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestScheduler_RunsRegisteredTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sched := New(fake, testLogger())

	var runs atomic.Int64
	sched.Register(Task{
		Name:     "sweep",
		Interval: time.Minute,
		Run:      func(ctx context.Context) { runs.Add(1) },
	})

	sched.Start(context.Background())
	defer sched.Stop()

	fake.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, time.Millisecond)

	fake.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return runs.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestScheduler_StopCancelsTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sched := New(fake, testLogger())

	var runs atomic.Int64
	sched.Register(Task{
		Name:     "sweep",
		Interval: time.Minute,
		Run:      func(ctx context.Context) { runs.Add(1) },
	})

	sched.Start(context.Background())
	sched.Stop()

	fake.Advance(5 * time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int64(0), runs.Load())
}

func TestScheduler_RegisterAfterStartIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sched := New(fake, testLogger())

	sched.Start(context.Background())
	defer sched.Stop()

	var runs atomic.Int64
	sched.Register(Task{
		Name:     "late",
		Interval: time.Millisecond,
		Run:      func(ctx context.Context) { runs.Add(1) },
	})

	fake.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int64(0), runs.Load())
}

func TestFakeClock_CoalescesMissedTicks(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	ticks, stop := fake.Ticker(time.Minute)
	defer stop()

	fake.Advance(5 * time.Minute)

	select {
	case <-ticks:
	default:
		t.Fatal("expected a pending tick")
	}

	select {
	case <-ticks:
		t.Fatal("missed ticks should coalesce into one")
	default:
	}
}
