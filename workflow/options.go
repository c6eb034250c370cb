package workflow

import (
	"log/slog"
	"time"
)

// Options contains configuration for workflow execution.
type Options struct {
	// Timeout sets a deadline for the entire run.
	Timeout time.Duration

	// StepTimeout sets a deadline for each step, bounding every capability
	// call the step makes. Default is 2 minutes; 0 disables it.
	StepTimeout time.Duration

	// Hooks observe the run. Multiple hook sets are called in order.
	Hooks []Hooks

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Option is a functional option for workflow configuration.
type Option func(*Options)

// WithTimeout sets the overall run timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithStepTimeout sets the timeout for each step.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// WithHooks adds a set of hooks. It may be given more than once.
func WithHooks(h Hooks) Option {
	return func(o *Options) {
		o.Hooks = append(o.Hooks, h)
	}
}

// WithLogger sets the logger for run records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// ApplyOptions applies functional options with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		StepTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
