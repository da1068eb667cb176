package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer blocks between requests
type Pacer interface {
	// Wait blocks until the next request may proceed
	Wait(ctx context.Context) error
}

// RandomDelay sleeps a uniformly random whole number of seconds in
// [MinSeconds, MaxSeconds], one second at a time.
type RandomDelay struct {
	MinSeconds int
	MaxSeconds int
	// Unit is the length of one step. Zero means one second.
	Unit time.Duration
	// OnTick is called before each step with the number of steps remaining
	// and once with zero when the delay has elapsed.
	OnTick func(remaining int)

	rnd   *rand.Rand
	sleep func(context.Context, time.Duration) error
}

// NewRandomDelay creates a RandomDelay between min and max seconds
func NewRandomDelay(minSeconds, maxSeconds int) *RandomDelay {
	return &RandomDelay{
		MinSeconds: minSeconds,
		MaxSeconds: maxSeconds,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next draws the number of steps for the next delay
func (d *RandomDelay) Next() int {
	if d.MaxSeconds <= d.MinSeconds {
		return d.MinSeconds
	}
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return d.MinSeconds + d.rnd.Intn(d.MaxSeconds-d.MinSeconds+1)
}

// Wait sleeps for a freshly drawn random delay
func (d *RandomDelay) Wait(ctx context.Context) error {
	unit := d.Unit
	if unit <= 0 {
		unit = time.Second
	}
	sleep := d.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for remaining := d.Next(); remaining > 0; remaining-- {
		if d.OnTick != nil {
			d.OnTick(remaining)
		}
		if err := sleep(ctx, unit); err != nil {
			return err
		}
	}
	if d.OnTick != nil {
		d.OnTick(0)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TokenBucket caps the number of requests per refill period
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow takes a token if one is available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		tb.mu.Lock()
		untilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if untilRefill <= 0 {
			untilRefill = 100 * time.Millisecond
		}
		if err := sleepCtx(ctx, untilRefill); err != nil {
			return err
		}
	}
	return nil
}

// refill tops the bucket back up once the period has elapsed
func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// NoDelay never blocks
type NoDelay struct{}

// Wait returns immediately unless ctx is done
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
