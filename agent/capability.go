package agent

import (
	"context"
	"strings"

	"github.com/spetersoncode/warden/internal/retry"
)

// Task is one unit of work handed to a Capability.
type Task struct {
	// Description says what to do.
	Description string

	// ExpectedOutput describes the shape of a good answer.
	ExpectedOutput string

	// Context is opaque text the capability works on, such as crawled content.
	Context string
}

// Prompt renders the task as a user prompt.
func (t Task) Prompt() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(t.Description))
	if ctx := strings.TrimSpace(t.Context); ctx != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(ctx)
	}
	if exp := strings.TrimSpace(t.ExpectedOutput); exp != "" {
		b.WriteString("\n\nExpected output: ")
		b.WriteString(exp)
	}
	return b.String()
}

// Capability executes a task and returns a text result.
// Implementations must be safe to reuse across runs.
type Capability interface {
	Execute(ctx context.Context, task Task) (string, error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(ctx context.Context, task Task) (string, error)

// Execute calls f.
func (f CapabilityFunc) Execute(ctx context.Context, task Task) (string, error) {
	return f(ctx, task)
}

// WithRetry wraps c so transient failures are retried according to cfg.
// A configuration allowing a single attempt returns c unchanged.
func WithRetry(c Capability, cfg retry.Config) Capability {
	return WithRetryEvents(c, cfg, nil)
}

// WithRetryEvents is like WithRetry but reports attempts to obs.
func WithRetryEvents(c Capability, cfg retry.Config, obs retry.Observer) Capability {
	if !cfg.Enabled() {
		return c
	}
	return CapabilityFunc(func(ctx context.Context, task Task) (string, error) {
		return retry.DoWithEvents(ctx, cfg, obs, func(ctx context.Context) (string, error) {
			return c.Execute(ctx, task)
		})
	})
}
