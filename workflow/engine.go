package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/warden/event"
)

// Result describes a finished run. State holds whatever was written before
// the run ended, so a failed run still exposes its partial state.
type Result struct {
	RunID       string
	Workflow    string
	State       *State
	Path        []string
	Termination Termination
	Error       error
	Duration    time.Duration
}

// Completed reports whether the run reached the terminal sentinel.
func (r *Result) Completed() bool {
	return r.Termination == TerminationComplete
}

// Overlay returns the run's path as a Mermaid overlay. The last step of a
// failed run is marked current.
func (r *Result) Overlay() *Overlay {
	o := &Overlay{Visited: slices.Clone(r.Path)}
	if !r.Completed() && len(r.Path) > 0 {
		o.Current = r.Path[len(r.Path)-1]
	}
	return o
}

// Engine executes a compiled Graph. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	graph   *Graph
	options *Options
	hooks   hookSet
}

// NewEngine creates an engine for graph.
func NewEngine(graph *Graph, opts ...Option) *Engine {
	options := ApplyOptions(opts...)
	return &Engine{
		graph:   graph,
		options: options,
		hooks:   hookSet(options.Hooks),
	}
}

// Graph returns the compiled graph the engine runs.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// run carries the bookkeeping of one execution.
type run struct {
	id     string
	engine *Engine
	state  *State
	path   []string
	log    *slog.Logger
}

func (r *run) event(t event.Type) event.Event {
	return event.New(t, r.id, r.engine.graph.name)
}

func (r *run) emit(ctx context.Context, level slog.Level, msg string, e event.Event) {
	r.log.LogAttrs(ctx, level, msg, e.Attrs()...)
	r.engine.hooks.emit(e)
}

// Run drives state from the start step to End. Steps run strictly one at
// a time. The engine never retries; the first error aborts the run and is
// returned together with a Result holding the partial state.
func (e *Engine) Run(ctx context.Context, state *State) (*Result, error) {
	if state == nil || state.schema != e.graph.schema {
		return nil, structural("", "", "state is not bound to the schema of workflow %q", e.graph.name)
	}

	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()
	}

	r := &run{
		id:     uuid.NewString(),
		engine: e,
		state:  state,
	}
	r.log = e.options.Logger.With("run_id", r.id, "workflow", e.graph.name)

	start := time.Now()
	r.emit(ctx, slog.LevelInfo, "run start", r.event(event.RunStart))

	err := r.loop(ctx)

	result := &Result{
		RunID:       r.id,
		Workflow:    e.graph.name,
		State:       state,
		Path:        r.path,
		Termination: terminationOf(err),
		Error:       err,
		Duration:    time.Since(start),
	}

	end := r.event(event.RunEnd)
	end.Duration = result.Duration
	end.Termination = string(result.Termination)
	end.Path = slices.Clone(r.path)
	end.Error = err
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	r.emit(ctx, level, "run end", end)

	return result, err
}

func (r *run) loop(ctx context.Context) error {
	g := r.engine.graph
	current := g.start

	for current != End {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("workflow: run stopped before step %q: %w", current, err)
		}

		step := g.steps[current]
		if err := r.runStep(ctx, step); err != nil {
			return err
		}

		next, label, err := g.resolve(current, r.state)
		if err != nil {
			return err
		}

		route := r.event(event.RouteSelected)
		route.StepName = current
		route.RouteName = next
		route.Label = label
		r.emit(ctx, slog.LevelDebug, "route selected", route)

		current = next
	}
	return nil
}

func (r *run) runStep(ctx context.Context, step Step) error {
	name := step.Name()

	for _, f := range step.Requires() {
		if !r.state.Has(f) {
			return structural(name, f, "required field is absent")
		}
	}

	started := r.event(event.StepStart)
	started.StepName = name
	r.emit(ctx, slog.LevelDebug, "step start", started)

	stepCtx := ctx
	if d := r.engine.options.StepTimeout; d > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	scope := newScope(r.id, step, r.state)
	begin := time.Now()
	err := invoke(stepCtx, step, scope)
	if err == nil {
		err = scope.err()
	}
	r.path = append(r.path, name)

	if err != nil && !errors.Is(err, ErrStructural) {
		err = &StepError{StepName: name, Err: err}
	}

	ended := r.event(event.StepEnd)
	ended.StepName = name
	ended.Duration = time.Since(begin)
	ended.Error = err
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	r.emit(ctx, level, "step end", ended)

	return err
}

// invoke runs a step, converting a panic into an error.
func invoke(ctx context.Context, step Step, scope *Scope) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return step.Run(ctx, scope)
}
