// Package agent provides the capability units a workflow step delegates to.
//
// A Capability performs one Task and returns text. The production
// implementation is Agent: a role-playing, tool-calling loop over a
// warden.ChatProvider. The model may request tool calls, which are executed
// against the agent's tool.Registry and fed back until the model answers
// without tool calls.
//
//	reg, _ := tools.Subset(tool.SplunkLogFetcherName)
//	investigator := agent.New(llm, reg, agent.Profile{
//	    Role:      "Security Analyst",
//	    Goal:      "Investigate potential security incidents",
//	    Backstory: "Expert in analyzing logs and identifying threats.",
//	}, agent.WithMaxSteps(5))
//
//	out, err := investigator.Execute(ctx, agent.Task{
//	    Description:    "Search Splunk for related logs.",
//	    ExpectedOutput: "A summary of the relevant log events.",
//	    Context:        content,
//	})
//
// Any Capability can be wrapped with WithRetry to retry transient failures.
package agent
