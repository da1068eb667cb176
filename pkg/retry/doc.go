// Package retry provides a retry loop with pluggable backoff.
//
// MaxAttempts of zero retries forever, which is how the connectivity guard
// waits for the network to come back:
//
//	attempts, err := retry.Do(func() error {
//		return probe.Check(ctx)
//	}, &retry.Config{
//		MaxAttempts: 0,
//		Backoff:     &retry.ConstantBackoff{Delay: time.Second},
//		Context:     ctx,
//	})
//
// Backoff strategies:
//   - ConstantBackoff: the same delay after every failure
//   - ExponentialBackoff: growing delay with optional cap and jitter
package retry
