package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSchema() *Schema {
	return MustSchema(
		Field{Name: "input_ref", Input: true},
		Field{Name: "content"},
		Field{Name: "decision", Labels: []string{"investigate", "notify"}},
		Field{Name: "output"},
	)
}

var testClassifier = Classifier{
	Rules: []Rule{
		{Keyword: "notify", Label: "notify"},
		{Keyword: "splunk", Label: "investigate"},
	},
	Default: "investigate",
}

// capability is a stand-in for an agent call.
type capability func(ctx context.Context, input string) (string, error)

type fakes struct {
	crawl       capability
	decide      capability
	investigate capability
	notify      capability
}

func echo(_ context.Context, input string) (string, error) { return input, nil }

func constant(s string) capability {
	return func(context.Context, string) (string, error) { return s, nil }
}

func produce(field, input string, c capability) StepFunc {
	return func(ctx context.Context, s *Scope) error {
		out, err := c(ctx, s.Input(input))
		if err != nil {
			return err
		}
		return s.Set(field, out)
	}
}

func triageBuilder(schema *Schema, f fakes) *GraphBuilder {
	if f.decide == nil {
		f.decide = echo
	}
	decide := func(ctx context.Context, s *Scope) error {
		out, err := f.decide(ctx, s.Input("content"))
		if err != nil {
			return err
		}
		return s.Set("decision", testClassifier.Classify(out))
	}
	both := []string{"content", "decision"}

	return NewGraph("triage", schema).
		AddStep(NewStep("crawl", []string{"input_ref"}, []string{"content"}, produce("content", "input_ref", f.crawl))).
		AddStep(NewStep("decide", []string{"content"}, []string{"decision"}, decide)).
		AddStep(NewStep("investigate", both, []string{"output"}, produce("output", "content", f.investigate))).
		AddStep(NewStep("notify", both, []string{"output"}, produce("output", "content", f.notify))).
		SetStart("crawl").
		AddEdge("crawl", "decide").
		AddBranch("decide", "decision", map[string]string{
			"investigate": "investigate",
			"notify":      "notify",
		}).
		AddEdge("investigate", End).
		AddEdge("notify", End)
}

func triageGraph(t *testing.T, f fakes) *Graph {
	t.Helper()
	g, err := triageBuilder(newTestSchema(), f).Compile()
	require.NoError(t, err)
	return g
}

func newInput(t *testing.T, g *Graph, ref string) *State {
	t.Helper()
	s, err := NewState(g.Schema(), map[string]string{"input_ref": ref})
	require.NoError(t, err)
	return s
}
