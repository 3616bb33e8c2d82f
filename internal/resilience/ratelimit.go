package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum delay between the end of one call and the
// start of the next call for the same operation name. Calls for one operation
// run one at a time; different operations do not block each other.
type RateLimiter struct {
	minDelay time.Duration

	mu    sync.Mutex
	last  map[string]time.Time
	gates map[string]chan struct{}

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		minDelay: minDelay,
		last:     make(map[string]time.Time),
		gates:    make(map[string]chan struct{}),
		now:      time.Now,
		sleep:    Sleep,
	}
}

// Do waits for any in-flight call for op, waits out the remaining delay, runs
// fn, and records its completion time whether or not fn failed.
func (l *RateLimiter) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	gate := l.gate(op)
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-gate }()

	if wait := l.remaining(op); wait > 0 {
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
	err := fn(ctx)

	l.mu.Lock()
	l.last[op] = l.now()
	l.mu.Unlock()
	return err
}

// gate returns the one-slot semaphore for op. Waiters leave when ctx is done.
func (l *RateLimiter) gate(op string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[op]
	if !ok {
		g = make(chan struct{}, 1)
		l.gates[op] = g
	}
	return g
}

func (l *RateLimiter) remaining(op string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.last[op]
	if !ok {
		return 0
	}
	return l.minDelay - l.now().Sub(last)
}
