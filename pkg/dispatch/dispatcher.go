package dispatch

import (
	"context"
	"fmt"

	errs "wallgrab/pkg/errors"
	"wallgrab/pkg/logger"
)

// Strategy acquires the media behind one kind of URL
type Strategy interface {
	// Name identifies the strategy in logs and summaries
	Name() string
	// Match reports whether this strategy handles url
	Match(url string) bool
	// Acquire downloads url into the output directory and returns the saved paths
	Acquire(ctx context.Context, url string) ([]string, error)
}

// Outcome is the result of one acquisition: saved, or failed with a reason
type Outcome struct {
	URL      string
	Strategy string
	Paths    []string
	Err      *errs.Error
}

// Saved reports whether the acquisition succeeded. A gallery with no images
// is still a success.
func (o Outcome) Saved() bool {
	return o.Err == nil
}

// Dispatcher routes each URL to the first registered strategy that matches it
type Dispatcher struct {
	strategies []Strategy
	logger     logger.Logger
}

// NewDispatcher creates a dispatcher with no strategies
func NewDispatcher(log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Dispatcher{logger: log}
}

// Register appends a strategy. Registration order is match order.
func (d *Dispatcher) Register(s Strategy) {
	d.strategies = append(d.strategies, s)
}

// Match returns the first strategy that matches url, or nil
func (d *Dispatcher) Match(url string) Strategy {
	for _, s := range d.strategies {
		if s.Match(url) {
			return s
		}
	}
	return nil
}

// Strategies returns the registered strategies in match order
func (d *Dispatcher) Strategies() []Strategy {
	return d.strategies
}

// Acquire runs the matching strategy. Every error, and any panic, comes back
// as a failed Outcome.
func (d *Dispatcher) Acquire(ctx context.Context, url string) (out Outcome) {
	out.URL = url

	s := d.Match(url)
	if s == nil {
		out.Err = errs.Newf(errs.KindUnknown, url, "no strategy matches url")
		return out
	}
	out.Strategy = s.Name()

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorWithFields("strategy panicked", map[string]interface{}{
				"strategy": out.Strategy,
				"url":      url,
				"panic":    fmt.Sprint(r),
			})
			out.Paths = nil
			out.Err = errs.Newf(errs.KindExtractor, url, "%s strategy panicked: %v", out.Strategy, r)
		}
	}()

	paths, err := s.Acquire(ctx, url)
	if err != nil {
		out.Err = errs.As(url, err)
		return out
	}
	out.Paths = paths
	return out
}
