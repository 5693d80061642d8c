// Package clock abstracts time access so background maintenance can be driven
// by a virtual clock in tests instead of real timers.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and ticker construction.
type Clock interface {
	// Now returns the current time in UTC.
	Now() time.Time

	// Ticker returns a channel that delivers ticks at the given interval and a
	// stop function releasing its resources.
	Ticker(interval time.Duration) (<-chan time.Time, func())
}

// realClock implements Clock using the time package.
type realClock struct{}

// New returns a Clock backed by real time.
func New() Clock {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func (realClock) Ticker(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// FakeClock is a manually advanced Clock for deterministic tests.
// Advance moves the current time forward and fires any tickers whose interval
// elapsed, synchronously, before returning.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

// NewFake creates a FakeClock starting at the given time.
func NewFake(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

// Now returns the fake current time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Ticker registers a fake ticker fired by Advance.
func (f *FakeClock) Ticker(interval time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticker := &fakeTicker{
		ch:       make(chan time.Time, 1),
		interval: interval,
		next:     f.now.Add(interval),
	}
	f.tickers = append(f.tickers, ticker)

	stop := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		ticker.stopped = true
	}
	return ticker.ch, stop
}

// Advance moves the clock forward by d and fires elapsed tickers.
// Like time.Ticker, a slow receiver coalesces missed ticks into one.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
	for _, ticker := range f.tickers {
		if ticker.stopped {
			continue
		}
		fired := false
		for !ticker.next.After(f.now) {
			ticker.next = ticker.next.Add(ticker.interval)
			if !fired {
				select {
				case ticker.ch <- f.now:
					fired = true
				default:
				}
			}
		}
	}
}
