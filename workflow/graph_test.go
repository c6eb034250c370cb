package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Scope) error { return nil }

func structuralErrors(t *testing.T, err error) []*StructuralError {
	t.Helper()
	require.ErrorIs(t, err, ErrStructural)

	var out []*StructuralError
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		var se *StructuralError
		if errors.As(err, &se) {
			out = append(out, se)
		}
	}
	walk(err)
	return out
}

func reasons(errs []*StructuralError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Step + ": " + e.Reason
	}
	return out
}

func TestCompile_Triage(t *testing.T) {
	g := triageGraph(t, fakes{})

	assert.Equal(t, "triage", g.Name())
	assert.Equal(t, "crawl", g.Start())
	assert.Equal(t, []string{"crawl", "decide", "investigate", "notify"}, g.Steps())
	assert.Equal(t, []string{"decide"}, g.Successors("crawl"))
	assert.Equal(t, []string{"investigate", "notify"}, g.Successors("decide"))
	assert.Equal(t, []string{End}, g.Successors("notify"))

	step, ok := g.Step("decide")
	require.True(t, ok)
	assert.Equal(t, []string{"decision"}, step.Produces())
}

func TestCompile_Rejections(t *testing.T) {
	schema := newTestSchema()
	in := []string{"input_ref"}
	content := []string{"content"}

	tests := []struct {
		name   string
		build  func() *GraphBuilder
		step   string
		reason string
	}{
		{
			name: "undeclared successor",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", "escalate")
			},
			step:   "crawl",
			reason: "undeclared successor",
		},
		{
			name: "unreachable step",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("orphan", content, []string{"output"}, noop)).
					SetStart("crawl").
					AddEdge("crawl", End).
					AddEdge("orphan", End)
			},
			step:   "orphan",
			reason: `unreachable from start step "crawl"`,
		},
		{
			name: "cycle",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("decide", content, []string{"decision"}, noop)).
					SetStart("crawl").
					AddEdge("crawl", "decide").
					AddBranch("decide", "decision", map[string]string{
						"investigate": "crawl",
						"notify":      End,
					})
			},
			step:   "decide",
			reason: "edge closes a cycle",
		},
		{
			name: "missing start",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddEdge("crawl", End)
			},
			reason: "no start step",
		},
		{
			name: "unknown start",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("fetch").
					AddEdge("crawl", End)
			},
			step:   "fetch",
			reason: "unknown start step",
		},
		{
			name: "duplicate step",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", End)
			},
			step:   "crawl",
			reason: "duplicate step",
		},
		{
			name: "step without outgoing edge",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl")
			},
			step:   "crawl",
			reason: "step has no outgoing edge",
		},
		{
			name: "two outgoing edges",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", End).
					AddEdge("crawl", End)
			},
			step:   "crawl",
			reason: "more than one outgoing edge",
		},
		{
			name: "edge from unknown step",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", End).
					AddEdge("ghost", End)
			},
			step:   "ghost",
			reason: "edge from unknown step",
		},
		{
			name: "label without branch",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("decide", content, []string{"decision"}, noop)).
					SetStart("crawl").
					AddEdge("crawl", "decide").
					AddBranch("decide", "decision", map[string]string{"investigate": End})
			},
			step:   "decide",
			reason: `label "notify" has no branch`,
		},
		{
			name: "case outside label set",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("decide", content, []string{"decision"}, noop)).
					SetStart("crawl").
					AddEdge("crawl", "decide").
					AddBranch("decide", "decision", map[string]string{
						"investigate": End,
						"notify":      End,
						"escalate":    End,
					})
			},
			step:   "decide",
			reason: `case "escalate" is not a label of "decision"`,
		},
		{
			name: "branch on unlabelled field",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddBranch("crawl", "content", map[string]string{"x": End})
			},
			step:   "crawl",
			reason: "branch field has no label set",
		},
		{
			name: "conditional edge without targets",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					SetStart("crawl").
					AddConditionalEdge("crawl", func(*State) string { return End })
			},
			step:   "crawl",
			reason: "conditional edge declares no targets",
		},
		{
			name: "requires a field not produced on every path",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("report", []string{"decision"}, []string{"output"}, noop)).
					SetStart("crawl").
					AddEdge("crawl", "report").
					AddEdge("report", End)
			},
			step:   "report",
			reason: "required field is not produced on every path",
		},
		{
			name: "field produced twice on a path",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, content, noop)).
					AddStep(NewStep("recrawl", in, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", "recrawl").
					AddEdge("recrawl", End)
			},
			step:   "recrawl",
			reason: "field is produced twice on a path",
		},
		{
			name: "produces an input field",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", in, in, noop)).
					SetStart("crawl").
					AddEdge("crawl", End)
			},
			step:   "crawl",
			reason: "produces an input field",
		},
		{
			name: "requires unknown field",
			build: func() *GraphBuilder {
				return NewGraph("g", schema).
					AddStep(NewStep("crawl", []string{"url"}, content, noop)).
					SetStart("crawl").
					AddEdge("crawl", End)
			},
			step:   "crawl",
			reason: "requires unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build().Compile()
			assert.Nil(t, g)

			errs := structuralErrors(t, err)
			assert.Contains(t, reasons(errs), tt.step+": "+tt.reason)
		})
	}
}

func TestCompile_BranchOnlyOnOnePath(t *testing.T) {
	// Branch steps that each produce output are fine: no path has both.
	g := triageGraph(t, fakes{})
	assert.NotNil(t, g)

	// A join after the fork may only rely on fields produced on both sides.
	schema := newTestSchema()
	both := []string{"content", "decision"}
	_, err := NewGraph("g", schema).
		AddStep(NewStep("crawl", []string{"input_ref"}, []string{"content"}, noop)).
		AddStep(NewStep("decide", []string{"content"}, []string{"decision"}, noop)).
		AddStep(NewStep("investigate", both, []string{"output"}, noop)).
		AddStep(NewStep("notify", both, nil, noop)).
		AddStep(NewStep("report", []string{"output"}, nil, noop)).
		SetStart("crawl").
		AddEdge("crawl", "decide").
		AddBranch("decide", "decision", map[string]string{"investigate": "investigate", "notify": "notify"}).
		AddEdge("investigate", "report").
		AddEdge("notify", "report").
		AddEdge("report", End).
		Compile()

	errs := structuralErrors(t, err)
	assert.Contains(t, reasons(errs), "report: required field is not produced on every path")
}

func TestStructuralError_Message(t *testing.T) {
	err := edgeError("decide", "escalate", "undeclared successor")
	assert.Equal(t, `workflow: structural error at edge "decide -> escalate": undeclared successor`, err.Error())

	err = structural("crawl", "content", "read of undeclared field")
	assert.Equal(t, `workflow: structural error at step "crawl" (field "content"): read of undeclared field`, err.Error())

	step, ok := FailedStep(err)
	assert.True(t, ok)
	assert.Equal(t, "crawl", step)
}
