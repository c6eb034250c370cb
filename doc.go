// Package warden holds the shared LLM vocabulary used by the warden triage
// workflow: messages, tool definitions, chat options and categorized errors.
//
// The package is imported as ai by convention:
//
//	import ai "github.com/spetersoncode/warden"
//
// Concrete providers live under internal/provider and are reached through the
// [github.com/spetersoncode/warden/client] package. Models are selected from
// the [github.com/spetersoncode/warden/model] catalogue.
//
// # Basic Usage
//
//	c := client.New(client.Config{
//	    APIKeys:  client.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	    Defaults: client.Defaults{Chat: model.ClaudeHaiku45},
//	})
//
//	resp, err := c.Chat(ctx, []ai.Message{
//	    {Role: ai.RoleUser, Content: "Summarise this runbook."},
//	})
//
// # Tools
//
// Tools are described by [Tool] with a JSON Schema for their parameters.
// [SchemaFor] derives that schema from a Go struct. The model answers with
// [ToolCall] values which are executed by a tool registry and returned as
// [ToolResult] values in a [RoleTool] message.
//
// # Errors
//
// Provider errors are wrapped in [Error] with an [ErrorCategory]. Use
// [IsTransient] to decide whether an operation may be retried.
package warden
