package connectivity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wallgrab/pkg/config"
	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/fetch"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/retry"
)

// Notice is shown once each time the guard starts waiting
const Notice = "Ensuring that there's still an internet connection..."

// Probe checks whether the network is usable
type Probe interface {
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to the Probe interface
type ProbeFunc func(ctx context.Context) error

// Check calls f(ctx)
func (f ProbeFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HTTPProbe issues a GET against a well-known URL
type HTTPProbe struct {
	URL     string
	Timeout time.Duration
	client  *fetch.Client
}

// NewHTTPProbe creates a probe for url with a per-attempt timeout
func NewHTTPProbe(url string, timeout time.Duration, userAgent string, log logger.Logger) *HTTPProbe {
	return &HTTPProbe{
		URL:     url,
		Timeout: timeout,
		client:  fetch.NewClient(timeout, userAgent, log),
	}
}

// Check succeeds only on a 2xx response received within the timeout
func (p *HTTPProbe) Check(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	resp, err := p.client.Get(ctx, p.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errs.FromStatus(p.URL, resp.StatusCode)
	}
	return nil
}

// Guard blocks until a probe succeeds
type Guard struct {
	probe   Probe
	backoff retry.BackoffStrategy
	notify  func(msg string)
	logger  logger.Logger
}

// NewGuard creates a guard that retries probe according to cfg
func NewGuard(probe Probe, cfg *config.ConnectivityConfig, log logger.Logger) *Guard {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Guard{
		probe:   probe,
		backoff: BackoffFor(cfg),
		logger:  log,
	}
}

// SetNotifier replaces the function that announces the wait
func (g *Guard) SetNotifier(notify func(msg string)) {
	g.notify = notify
}

// BackoffFor builds the delay strategy between failed probes
func BackoffFor(cfg *config.ConnectivityConfig) retry.BackoffStrategy {
	if cfg == nil {
		return &retry.ConstantBackoff{Delay: time.Second}
	}

	if strings.EqualFold(cfg.Backoff, "exponential") {
		return &retry.ExponentialBackoff{
			BaseDelay:    cfg.Interval,
			MaxDelay:     cfg.MaxInterval,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		}
	}

	delay := cfg.Interval
	if cfg.MaxInterval > 0 && delay > cfg.MaxInterval {
		delay = cfg.MaxInterval
	}
	return &retry.ConstantBackoff{Delay: delay}
}

// WaitUntilReachable probes until one check succeeds and returns the number
// of probes made. It only gives up when ctx is done.
func (g *Guard) WaitUntilReachable(ctx context.Context) (int, error) {
	if g.notify != nil {
		g.notify(Notice)
	} else {
		g.logger.Warn(Notice)
	}

	attempts, err := retry.Do(func() error {
		return g.probe.Check(ctx)
	}, &retry.Config{
		MaxAttempts: 0,
		Backoff:     g.backoff,
		Context:     ctx,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			g.logger.DebugWithFields("connectivity probe failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
				"delay":   delay.String(),
			})
		},
	})
	if err != nil {
		return attempts, fmt.Errorf("gave up waiting for connectivity after %d probes: %w", attempts, err)
	}

	if attempts > 1 {
		g.logger.InfoWithFields("connectivity restored", map[string]interface{}{
			"probes": attempts,
		})
	}
	return attempts, nil
}
