package workflow

import (
	"errors"
	"maps"
	"slices"
)

// DecisionFunc picks the successor of a conditional edge. It receives a
// copy of the state and must return one of the edge's declared targets.
type DecisionFunc func(state *State) string

type edgeKind int

const (
	edgeStatic edgeKind = iota
	edgeBranch
	edgeConditional
)

// edge is the outgoing edge of one step.
type edge struct {
	kind    edgeKind
	to      string            // static
	field   string            // branch
	cases   map[string]string // branch: label -> target
	decide  DecisionFunc      // conditional
	targets []string          // conditional
}

// successors returns the possible targets in a stable order.
func (e edge) successors() []string {
	switch e.kind {
	case edgeStatic:
		return []string{e.to}
	case edgeBranch:
		var out []string
		for _, label := range slices.Sorted(maps.Keys(e.cases)) {
			if t := e.cases[label]; !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
		return out
	default:
		return slices.Clone(e.targets)
	}
}

// Graph is a compiled, immutable workflow topology.
type Graph struct {
	name   string
	schema *Schema
	start  string
	order  []string
	steps  map[string]Step
	edges  map[string]edge
}

// Name returns the workflow name.
func (g *Graph) Name() string { return g.name }

// Schema returns the state schema of the workflow.
func (g *Graph) Schema() *Schema { return g.schema }

// Start returns the name of the start step.
func (g *Graph) Start() string { return g.start }

// Steps returns the step names in the order they were added.
func (g *Graph) Steps() []string { return slices.Clone(g.order) }

// Step looks up a step by name.
func (g *Graph) Step(name string) (Step, bool) {
	s, ok := g.steps[name]
	return s, ok
}

// Successors returns the declared successors of a step.
func (g *Graph) Successors(name string) []string {
	e, ok := g.edges[name]
	if !ok {
		return nil
	}
	return e.successors()
}

// resolve picks the successor of step from the state after it ran.
// The returned label is the branch label that selected it, if any.
func (g *Graph) resolve(step string, state *State) (next, label string, err error) {
	e := g.edges[step]
	switch e.kind {
	case edgeStatic:
		return e.to, "", nil
	case edgeBranch:
		value, ok := state.Get(e.field)
		if !ok {
			return "", "", structural(step, e.field, "branch field is absent")
		}
		target, ok := e.cases[value]
		if !ok {
			return "", value, structural(step, e.field, "no branch for label %q", value)
		}
		return target, value, nil
	default:
		target := e.decide(state.Clone())
		if !slices.Contains(e.targets, target) {
			return "", "", edgeError(step, target, "decision returned an undeclared successor")
		}
		return target, "", nil
	}
}

// GraphBuilder assembles a Graph. Errors are collected and reported by Compile.
type GraphBuilder struct {
	graph *Graph
	errs  []error
}

// NewGraph starts building a workflow named name over schema.
func NewGraph(name string, schema *Schema) *GraphBuilder {
	return &GraphBuilder{graph: &Graph{
		name:   name,
		schema: schema,
		steps:  make(map[string]Step),
		edges:  make(map[string]edge),
	}}
}

// AddStep adds a step. Names must be unique and must not be End.
func (b *GraphBuilder) AddStep(step Step) *GraphBuilder {
	name := step.Name()
	switch {
	case name == "" || name == End:
		b.errs = append(b.errs, structural(name, "", "invalid step name"))
	case b.graph.steps[name] != nil:
		b.errs = append(b.errs, structural(name, "", "duplicate step"))
	default:
		b.graph.steps[name] = step
		b.graph.order = append(b.graph.order, name)
	}
	return b
}

// SetStart designates the start step.
func (b *GraphBuilder) SetStart(name string) *GraphBuilder {
	b.graph.start = name
	return b
}

// AddEdge adds a static edge. to may be End.
func (b *GraphBuilder) AddEdge(from, to string) *GraphBuilder {
	return b.addEdge(from, edge{kind: edgeStatic, to: to})
}

// AddBranch adds a conditional edge that routes on the value of field.
// cases maps every label of field to a step name or End.
func (b *GraphBuilder) AddBranch(from, field string, cases map[string]string) *GraphBuilder {
	return b.addEdge(from, edge{kind: edgeBranch, field: field, cases: maps.Clone(cases)})
}

// AddConditionalEdge adds a conditional edge driven by decide, which may
// return only one of targets.
//
// Compile checks that targets are declared steps, but what decide returns
// is only known at run time: an undeclared answer aborts that run with a
// structural error. Prefer AddBranch, whose every label-to-step mapping is
// checked by Compile, when the route is a function of one label field.
func (b *GraphBuilder) AddConditionalEdge(from string, decide DecisionFunc, targets ...string) *GraphBuilder {
	return b.addEdge(from, edge{kind: edgeConditional, decide: decide, targets: slices.Clone(targets)})
}

func (b *GraphBuilder) addEdge(from string, e edge) *GraphBuilder {
	if _, dup := b.graph.edges[from]; dup {
		b.errs = append(b.errs, structural(from, "", "more than one outgoing edge"))
		return b
	}
	b.graph.edges[from] = e
	return b
}

// Compile validates the graph and returns it. All defects found are
// reported together; each matches ErrStructural.
func (b *GraphBuilder) Compile() (*Graph, error) {
	g := b.graph
	errs := slices.Clone(b.errs)

	if g.schema == nil {
		return nil, structural("", "", "graph has no schema")
	}
	if g.start == "" {
		errs = append(errs, structural("", "", "no start step"))
	} else if _, ok := g.steps[g.start]; !ok {
		errs = append(errs, structural(g.start, "", "unknown start step"))
	}

	errs = append(errs, b.checkSteps()...)
	errs = append(errs, b.checkEdges()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Reachability and ordering only make sense on a well-formed edge table.
	if err := b.checkReachable(); err != nil {
		return nil, err
	}
	order, err := b.topoOrder()
	if err != nil {
		return nil, err
	}
	if errs := b.checkDataFlow(order); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

func (b *GraphBuilder) checkSteps() []error {
	g := b.graph
	var errs []error
	for _, name := range g.order {
		step := g.steps[name]
		for _, f := range step.Requires() {
			if _, ok := g.schema.Field(f); !ok {
				errs = append(errs, structural(name, f, "requires unknown field"))
			}
		}
		for _, f := range step.Produces() {
			field, ok := g.schema.Field(f)
			switch {
			case !ok:
				errs = append(errs, structural(name, f, "produces unknown field"))
			case field.Input:
				errs = append(errs, structural(name, f, "produces an input field"))
			}
		}
	}
	return errs
}

func (b *GraphBuilder) checkEdges() []error {
	g := b.graph
	var errs []error

	for _, from := range slices.Sorted(maps.Keys(g.edges)) {
		if _, ok := g.steps[from]; !ok {
			errs = append(errs, structural(from, "", "edge from unknown step"))
		}
	}

	for _, name := range g.order {
		e, ok := g.edges[name]
		if !ok {
			errs = append(errs, structural(name, "", "step has no outgoing edge"))
			continue
		}

		switch e.kind {
		case edgeBranch:
			labels := g.schema.Labels(e.field)
			if len(labels) == 0 {
				errs = append(errs, structural(name, e.field, "branch field has no label set"))
				break
			}
			for _, label := range slices.Sorted(maps.Keys(e.cases)) {
				if !slices.Contains(labels, label) {
					errs = append(errs, edgeError(name, e.cases[label], "case %q is not a label of %q", label, e.field))
				}
			}
			for _, label := range labels {
				if _, ok := e.cases[label]; !ok {
					errs = append(errs, structural(name, e.field, "label %q has no branch", label))
				}
			}
		case edgeConditional:
			if e.decide == nil {
				errs = append(errs, structural(name, "", "conditional edge without decision function"))
			}
			if len(e.targets) == 0 {
				errs = append(errs, structural(name, "", "conditional edge declares no targets"))
			}
		}

		for _, to := range e.successors() {
			if to == End {
				continue
			}
			if _, ok := g.steps[to]; !ok {
				errs = append(errs, edgeError(name, to, "undeclared successor"))
			}
		}
	}
	return errs
}

func (b *GraphBuilder) checkReachable() error {
	g := b.graph
	seen := map[string]bool{g.start: true}
	queue := []string{g.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur) {
			if next != End && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var errs []error
	for _, name := range g.order {
		if !seen[name] {
			errs = append(errs, structural(name, "", "unreachable from start step %q", g.start))
		}
	}
	return errors.Join(errs...)
}

// topoOrder returns the steps in topological order, or a cycle error.
func (b *GraphBuilder) topoOrder() ([]string, error) {
	g := b.graph
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.order))
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = grey
		for _, next := range g.Successors(name) {
			if next == End {
				continue
			}
			switch color[next] {
			case grey:
				return edgeError(name, next, "edge closes a cycle")
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[name] = black
		order = append(order, name)
		return nil
	}

	if err := visit(g.start); err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}

// checkDataFlow verifies that every required field is guaranteed on all
// paths reaching a step and that no path produces a field twice.
func (b *GraphBuilder) checkDataFlow(order []string) []error {
	g := b.graph

	inputs := make(map[string]bool)
	for _, f := range g.schema.Inputs() {
		inputs[f] = true
	}

	preds := make(map[string][]string)
	for _, name := range order {
		for _, next := range g.Successors(name) {
			preds[next] = append(preds[next], name)
		}
	}

	// must: fields present on every path into the step.
	// may: fields produced on some path into the step.
	must := make(map[string]map[string]bool, len(order))
	may := make(map[string]map[string]bool, len(order))
	var errs []error

	for _, name := range order {
		step := g.steps[name]
		var in map[string]bool
		mayIn := make(map[string]bool)
		if name == g.start {
			in = maps.Clone(inputs)
		}
		for _, p := range preds[name] {
			out := maps.Clone(must[p])
			if out == nil {
				out = make(map[string]bool)
			}
			for _, f := range g.steps[p].Produces() {
				out[f] = true
				mayIn[f] = true
			}
			for f := range may[p] {
				mayIn[f] = true
			}
			if in == nil {
				in = out
				continue
			}
			for f := range in {
				if !out[f] {
					delete(in, f)
				}
			}
		}
		must[name] = in
		may[name] = mayIn

		for _, f := range step.Requires() {
			if !in[f] {
				errs = append(errs, structural(name, f, "required field is not produced on every path"))
			}
		}
		for _, f := range step.Produces() {
			if mayIn[f] {
				errs = append(errs, structural(name, f, "field is produced twice on a path"))
			}
		}

		if e := g.edges[name]; e.kind == edgeBranch {
			if !in[e.field] && !slices.Contains(step.Produces(), e.field) {
				errs = append(errs, structural(name, e.field, "branch field is not available"))
			}
		}
	}
	return errs
}
