// Package workflow is a small stateful workflow engine: a directed acyclic
// graph of named steps threading a schema-bound State through them, with
// static and conditional edges and a terminal sentinel.
//
// # State Model
//
// A Schema declares the fields of a run. Input fields are seeded by the
// caller; every other field is absent until the step that produces it runs.
// Fields are write-once and fields with a label set only accept members of it.
//
//	schema := workflow.MustSchema(
//	    workflow.Field{Name: "input_ref", Input: true},
//	    workflow.Field{Name: "content"},
//	    workflow.Field{Name: "decision", Labels: []string{"investigate", "notify"}},
//	    workflow.Field{Name: "output"},
//	)
//
// # Steps
//
// A step declares the fields it requires and produces. The engine verifies
// required fields before the step runs and hands it a Scope restricted to its
// declarations:
//
//	crawl := workflow.NewStep("crawl", []string{"input_ref"}, []string{"content"},
//	    func(ctx context.Context, s *workflow.Scope) error {
//	        text, err := crawler.Execute(ctx, agent.Task{Description: s.Input("input_ref")})
//	        if err != nil {
//	            return err
//	        }
//	        return s.Set("content", text)
//	    })
//
// # Graphs
//
// Graphs are built with a GraphBuilder and validated once by Compile, which
// rejects unknown targets, unreachable steps, cycles, uncovered labels and
// fields that are not guaranteed to be produced before they are read:
//
//	graph, err := workflow.NewGraph("triage", schema).
//	    AddStep(crawl).AddStep(decide).AddStep(investigate).AddStep(notify).
//	    SetStart("crawl").
//	    AddEdge("crawl", "decide").
//	    AddBranch("decide", "decision", map[string]string{
//	        "investigate": "investigate",
//	        "notify":      "notify",
//	    }).
//	    AddEdge("investigate", workflow.End).
//	    AddEdge("notify", workflow.End).
//	    Compile()
//
// # Running
//
// An Engine drives one run at a time per call and is safe for concurrent use:
//
//	engine := workflow.NewEngine(graph, workflow.WithStepTimeout(time.Minute))
//	state, _ := workflow.NewState(schema, map[string]string{"input_ref": "policy-doc-42"})
//	result, err := engine.Run(ctx, state)
//
// On failure the partial state and the error are both returned.
package workflow
