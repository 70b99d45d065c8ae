package reconcile

import (
	"grimm.is/converge/internal/clock"
	"grimm.is/converge/internal/logging"
	"grimm.is/converge/internal/metrics"
)

type options struct {
	dryRun   bool
	logger   *logging.Logger
	recorder Recorder
	metrics  *metrics.Registry
	clock    clock.Clock
}

// Option configures a reconciler or engine.
type Option func(*options)

// WithDryRun reports intended changes without applying them.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder hands every batch result to rec.
func WithRecorder(rec Recorder) Option {
	return func(o *options) {
		o.recorder = rec
	}
}

// WithMetrics counts every batch result in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithClock overrides the time source used to stamp results.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	o.logger = o.logger.WithComponent("reconcile")
	return o
}
