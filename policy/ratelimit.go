// Package policy implements the politeness rules every outbound request obeys:
// robots.txt evaluation per origin and minimum spacing per source.
package policy

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// RateLimiter enforces a minimum interval between two requests that share a key.
// Keys are independent: waiting on one never delays another.
type RateLimiter struct {
	minInterval time.Duration
	timeNow     func() time.Time // Injectable for testing
	sleep       Sleeper          // Injectable for testing

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter using the wall clock
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(minInterval, time.Now, SleepContext)
}

// NewRateLimiterWithClock creates a limiter with injectable clock and sleeper (for testing)
func NewRateLimiterWithClock(minInterval time.Duration, timeNow func() time.Time, sleep Sleeper) *RateLimiter {
	if minInterval < 0 {
		minInterval = 0
	}
	return &RateLimiter{
		minInterval: minInterval,
		timeNow:     timeNow,
		sleep:       sleep,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// MinInterval returns the configured spacing
func (r *RateLimiter) MinInterval() time.Duration {
	return r.minInterval
}

// Wait blocks until a request for key may proceed.
// The first call for a key never sleeps. Later calls sleep for the remainder of
// the interval since the previous call's slot. The slot is reserved before
// sleeping, so concurrent callers on one key queue up instead of racing.
func (r *RateLimiter) Wait(ctx context.Context, key string) (time.Duration, error) {
	if r.minInterval == 0 {
		return 0, nil
	}

	r.mu.Lock()
	lim, ok := r.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(r.minInterval), 1)
		r.limiters[key] = lim
	}
	now := r.timeNow()
	reservation := lim.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	r.mu.Unlock()

	if delay <= 0 {
		return 0, nil
	}
	if err := r.sleep(ctx, delay); err != nil {
		reservation.CancelAt(r.timeNow())
		return 0, err
	}
	return delay, nil
}

// Reset forgets every key
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters = make(map[string]*rate.Limiter)
}

// SleepContext sleeps for d, returning early with ctx.Err() on cancellation
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
