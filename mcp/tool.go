// Package mcp connects warden to the Model Context Protocol in both
// directions.
//
//   - Server: expose the triage workflow and the built-in tool registry to
//     MCP clients, so an assistant can start a triage run or call the
//     Confluence, Splunk and email tools directly.
//   - Client: connect to external MCP servers through [RemoteRegistry] and
//     hand their tools to the triage agents.
//
// # Serving
//
//	s := mcp.NewServer(registry,
//	    mcp.WithRunner(runner),
//	    mcp.WithHistory(runs),
//	)
//	if err := server.ServeStdio(s); err != nil {
//	    log.Fatal(err)
//	}
//
// # Consuming
//
//	remote, err := mcp.NewRemoteRegistry(ctx, "./ticket-mcp", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//	if err := remote.RegisterInto(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/warden"
)

// ToMCPTool converts a Tool to an MCP Tool. Parameters become the raw
// input schema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// FromMCPTool converts an MCP Tool to a Tool, taking the schema from
// RawInputSchema or, failing that, InputSchema.
func FromMCPTool(t mcp.Tool) ai.Tool {
	var schema json.RawMessage
	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else if data, err := json.Marshal(t.InputSchema); err == nil {
		schema = data
	}

	return ai.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// ToMCPCallToolRequest converts a ToolCall to an MCP CallToolRequest.
// Arguments that are not valid JSON are passed through as a string.
func ToMCPCallToolRequest(call ai.ToolCall) mcp.CallToolRequest {
	var args any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			args = call.Arguments
		}
	}

	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

// FromMCPCallToolResult converts an MCP result to a ToolResult. Text parts
// are joined with newlines; other content and structured content are
// appended as JSON.
func FromMCPCallToolResult(callID string, result *mcp.CallToolResult) ai.ToolResult {
	if result == nil {
		return ai.ToolResult{ToolCallID: callID, IsError: true}
	}

	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}

	return ai.ToolResult{
		ToolCallID: callID,
		Content:    strings.Join(parts, "\n"),
		IsError:    result.IsError,
	}
}
