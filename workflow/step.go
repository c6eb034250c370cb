package workflow

import (
	"context"
	"slices"
)

// Step is a named unit of work over the state.
// Steps must be stateless so one definition can serve concurrent runs.
type Step interface {
	// Name returns the unique step name.
	Name() string

	// Requires lists the fields the step reads.
	Requires() []string

	// Produces lists the fields the step writes.
	Produces() []string

	// Run executes the step. It reads and writes state only through scope.
	Run(ctx context.Context, scope *Scope) error
}

// StepFunc is the body of a step built with NewStep.
type StepFunc func(ctx context.Context, scope *Scope) error

type funcStep struct {
	name     string
	requires []string
	produces []string
	fn       StepFunc
}

// NewStep creates a Step from a function.
func NewStep(name string, requires, produces []string, fn StepFunc) Step {
	return &funcStep{
		name:     name,
		requires: slices.Clone(requires),
		produces: slices.Clone(produces),
		fn:       fn,
	}
}

func (s *funcStep) Name() string       { return s.name }
func (s *funcStep) Requires() []string { return slices.Clone(s.requires) }
func (s *funcStep) Produces() []string { return slices.Clone(s.produces) }

func (s *funcStep) Run(ctx context.Context, scope *Scope) error {
	return s.fn(ctx, scope)
}
