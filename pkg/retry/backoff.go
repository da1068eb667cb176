package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy decides how long Do sleeps between failed attempts
type BackoffStrategy interface {
	// NextDelay returns the pause after failed attempt n (1-based). Zero for n <= 0.
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles (or multiplies) the pause after every failure.
// Long outages end up probed every MaxDelay.
// MaxDelay of zero means no cap. JitterFactor spreads each delay by up to
// that fraction either way.
type ExponentialBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultExponentialBackoff starts at one second and settles at one minute
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NextDelay returns BaseDelay * Multiplier^(attempt-1), capped and jittered
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))

	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		delay += (rand.Float64() * 2 * jitter) - jitter
	}

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// ConstantBackoff probes at a fixed interval
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns Delay for every failed attempt
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait sleeps for delay unless ctx ends first
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
