package triage

import (
	"context"
	"errors"
	"strings"

	"github.com/spetersoncode/warden/workflow"
)

// ErrEmptyInputRef is returned by [Runner.Run] for a blank input reference.
var ErrEmptyInputRef = errors.New("triage: input_ref is required")

// Runner runs the triage workflow for one input reference at a time.
// It is safe for concurrent use.
type Runner struct {
	engine *workflow.Engine
}

// NewRunner creates a runner over a compiled triage graph.
func NewRunner(graph *workflow.Graph, opts ...workflow.Option) *Runner {
	return &Runner{engine: workflow.NewEngine(graph, opts...)}
}

// Graph returns the compiled graph.
func (r *Runner) Graph() *workflow.Graph {
	return r.engine.Graph()
}

// Run triages inputRef. The result is non-nil whenever the run started,
// including failed runs, and carries the partial state. A blank inputRef
// is rejected before any step runs.
func (r *Runner) Run(ctx context.Context, inputRef string) (*workflow.Result, error) {
	if strings.TrimSpace(inputRef) == "" {
		return nil, ErrEmptyInputRef
	}
	state, err := workflow.NewState(Schema(), map[string]string{FieldInputRef: inputRef})
	if err != nil {
		return nil, err
	}
	return r.engine.Run(ctx, state)
}

// Output returns the output field of a finished run.
func Output(result *workflow.Result) (string, bool) {
	if result == nil || result.State == nil {
		return "", false
	}
	return result.State.Get(FieldOutput)
}
