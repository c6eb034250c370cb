package agent

import (
	"log/slog"
	"time"

	ai "github.com/spetersoncode/warden"
)

// Options contains configuration for agent execution.
type Options struct {
	// MaxSteps limits the number of model round trips.
	// Set to 0 for unlimited (not recommended). Default is 10.
	MaxSteps int

	// Timeout sets a deadline for a whole Execute call.
	// A value of 0 means no timeout (context deadline applies).
	Timeout time.Duration

	// HandlerTimeout sets the timeout for each individual tool handler.
	// A value of 0 means no per-handler timeout. Default is 30 seconds.
	HandlerTimeout time.Duration

	// ParallelToolCalls runs multiple tool calls of one response concurrently.
	// Default is false.
	ParallelToolCalls bool

	// FailOnTransientToolError ends the run with the tool's error when a
	// handler fails transiently, instead of handing the error to the model.
	// Capability retry then decides whether to run the task again.
	FailOnTransientToolError bool

	// ChatOptions are passed through to the underlying ChatProvider.
	ChatOptions []ai.Option

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring agent execution.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		MaxSteps:       10,
		HandlerTimeout: 30 * time.Second,
	}
}

// ApplyOptions applies opts on top of the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithMaxSteps sets the maximum number of model round trips.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithTimeout sets a deadline for a whole Execute call.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHandlerTimeout sets the timeout for each individual tool handler.
// Set to 0 for no per-handler timeout.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithFailOnTransientToolError makes transient tool failures end the run.
func WithFailOnTransientToolError(enabled bool) Option {
	return func(o *Options) {
		o.FailOnTransientToolError = enabled
	}
}

// WithChatOptions passes options through to the ChatProvider.
// These options are applied to every chat call made by the agent.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// WithModel is a convenience option to set the model for chat calls.
func WithModel(model ai.Model) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, ai.WithModel(model))
	}
}

// WithMaxTokens is a convenience option to set max tokens for chat calls.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, ai.WithMaxTokens(n))
	}
}

// WithLogger sets the logger used for step and tool call records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
