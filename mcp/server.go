package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/store"
	"github.com/spetersoncode/warden/tool"
	"github.com/spetersoncode/warden/workflow"
)

// Workflow tool names.
const (
	RunTriageName        = "run_triage"
	DescribeWorkflowName = "describe_workflow"
	GetRunName           = "get_run"
)

// Runner runs a workflow for one input reference.
type Runner interface {
	Run(ctx context.Context, inputRef string) (*workflow.Result, error)
	Graph() *workflow.Graph
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	runner  Runner
	runs    *store.Runs
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithRunner exposes run_triage and describe_workflow backed by runner.
func WithRunner(r Runner) ServerOption {
	return func(c *serverConfig) {
		c.runner = r
	}
}

// WithHistory records runs started over MCP and exposes get_run.
func WithHistory(runs *store.Runs) ServerOption {
	return func(c *serverConfig) {
		c.runs = runs
	}
}

// NewServer creates an MCP server exposing every tool of registry that has
// a handler, plus the workflow tools selected by options. registry may be nil.
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "warden",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	if registry != nil {
		for _, t := range registry.Tools() {
			handler, ok := registry.Get(t.Name)
			if !ok || handler == nil {
				continue
			}
			s.AddTool(ToMCPTool(t), createMCPHandler(t.Name, handler))
		}
	}

	if cfg.runner != nil {
		w := &workflowTools{runner: cfg.runner, runs: cfg.runs}
		s.AddTool(mcp.NewTool(RunTriageName,
			mcp.WithDescription("Triage a Confluence page: crawl it, decide whether to investigate in Splunk or notify, and act"),
			mcp.WithString("input_ref", mcp.Required(), mcp.Description("Confluence page URL, content ID or title")),
		), w.runTriage)
		s.AddTool(mcp.NewTool(DescribeWorkflowName,
			mcp.WithDescription("Describe the triage workflow as a Mermaid flowchart"),
		), w.describe)
		if cfg.runs != nil {
			s.AddTool(mcp.NewTool(GetRunName,
				mcp.WithDescription("Fetch the recorded outcome of a triage run"),
				mcp.WithString("run_id", mcp.Required(), mcp.Description("Run ID returned by run_triage")),
			), w.getRun)
		}
	}

	return s
}

// createMCPHandler wraps a tool.Handler as an MCP tool handler.
func createMCPHandler(toolName string, handler tool.Handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsJSON := "{}"
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			argsJSON = string(data)
		}

		result, err := handler(ctx, ai.ToolCall{Name: toolName, Arguments: argsJSON})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

type workflowTools struct {
	runner Runner
	runs   *store.Runs
}

// runTriage reports a failed run as a tool error carrying the record, so
// the caller sees which step failed and the partial state.
func (w *workflowTools) runTriage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("input_ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := w.runner.Run(ctx, ref)
	if result == nil {
		return mcp.NewToolResultErrorFromErr("run rejected", err), nil
	}

	rec := store.NewRecord(result)
	if w.runs != nil {
		if serr := w.runs.Save(context.WithoutCancel(ctx), rec); serr != nil {
			return nil, serr
		}
	}

	res, jerr := mcp.NewToolResultJSON(rec)
	if jerr != nil {
		return nil, jerr
	}
	res.IsError = !result.Completed()
	return res, nil
}

func (w *workflowTools) describe(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(w.runner.Graph().Mermaid(nil)), nil
}

func (w *workflowTools) getRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := w.runs.Get(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return mcp.NewToolResultErrorf("no run %q", id), nil
	}
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultJSON(rec)
}

// ServeStdio serves s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
