package downloader

import (
	"context"
	"fmt"
	"time"

	"wallgrab/pkg/dispatch"
	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ratelimit"
)

// Acquirer downloads the media behind one URL
type Acquirer interface {
	Acquire(ctx context.Context, url string) dispatch.Outcome
}

// FailureRecorder persists URLs that could not be acquired
type FailureRecorder interface {
	Record(url string) error
}

// Guard blocks until the network is usable again
type Guard interface {
	WaitUntilReachable(ctx context.Context) (int, error)
}

// Reporter receives per-link progress
type Reporter interface {
	Attempt(index, total int, url string)
	Saved(url string, files int)
	Failed(url string, reason error)
}

// Result is the outcome of one link
type Result struct {
	Outcome  dispatch.Outcome
	Duration time.Duration
}

// Summary aggregates a run
type Summary struct {
	Total          int
	Saved          int
	Failed         int
	Files          int
	Probes         int
	FailuresByKind map[errs.Kind]int
	Results        []Result
	Duration       time.Duration
}

// Driver feeds links to the dispatcher one at a time
type Driver struct {
	acquirer Acquirer
	ledger   FailureRecorder
	guard    Guard
	pacer    ratelimit.Pacer
	reporter Reporter
	logger   logger.Logger

	// ProbeOn decides whether a failure of the given kind triggers the
	// connectivity guard. Nil probes after every failure.
	ProbeOn func(kind errs.Kind) bool
}

// NewDriver creates a pipeline driver
func NewDriver(acquirer Acquirer, ledger FailureRecorder, guard Guard, pacer ratelimit.Pacer, log logger.Logger) *Driver {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.NoDelay{}
	}
	return &Driver{
		acquirer: acquirer,
		ledger:   ledger,
		guard:    guard,
		pacer:    pacer,
		logger:   log,
	}
}

// SetReporter installs a progress reporter
func (d *Driver) SetReporter(r Reporter) {
	d.reporter = r
}

// Run processes links strictly in order. A saved link is followed by the
// pacing delay; a failed one is written to the ledger and then the guard
// waits for connectivity before the next link. Run only stops early when
// ctx is done or the ledger cannot be written.
func (d *Driver) Run(ctx context.Context, links []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Total:          len(links),
		FailuresByKind: make(map[errs.Kind]int),
	}

	d.logger.InfoWithFields("Starting download run", map[string]interface{}{
		"links": len(links),
	})

	for i, url := range links {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		logger.LogAttempt(d.logger, i+1, len(links), url)
		if d.reporter != nil {
			d.reporter.Attempt(i+1, len(links), url)
		}

		began := time.Now()
		out := d.acquirer.Acquire(ctx, url)
		summary.Results = append(summary.Results, Result{Outcome: out, Duration: time.Since(began)})

		if out.Saved() {
			logger.LogOutcome(d.logger, url, out.Strategy, len(out.Paths), nil)
			summary.Saved++
			summary.Files += len(out.Paths)
			if d.reporter != nil {
				d.reporter.Saved(url, len(out.Paths))
			}

			if err := d.pacer.Wait(ctx); err != nil {
				summary.Duration = time.Since(start)
				return summary, err
			}
			continue
		}

		logger.LogOutcome(d.logger, url, out.Strategy, 0, out.Err)
		summary.Failed++
		summary.FailuresByKind[out.Err.Kind]++
		if d.reporter != nil {
			d.reporter.Failed(url, out.Err)
		}

		if err := d.ledger.Record(url); err != nil {
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("record failure for %s: %w", url, err)
		}

		if d.ProbeOn == nil || d.ProbeOn(out.Err.Kind) {
			probes, err := d.guard.WaitUntilReachable(ctx)
			summary.Probes += probes
			if err != nil {
				summary.Duration = time.Since(start)
				return summary, err
			}
		}
	}

	summary.Duration = time.Since(start)
	d.logger.InfoWithFields("Download run complete", map[string]interface{}{
		"total":    summary.Total,
		"saved":    summary.Saved,
		"failed":   summary.Failed,
		"files":    summary.Files,
		"duration": summary.Duration.String(),
	})
	return summary, nil
}
