package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/tool"
)

// RemoteRegistry provides access to tools from an MCP server. Calls are
// proxied to the server; the tool list is cached and can be refreshed
// with [RemoteRegistry.Refresh].
//
// RemoteRegistry is safe for concurrent use.
type RemoteRegistry struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]ai.Tool
}

// NewRemoteRegistry starts command as a subprocess and talks MCP to it
// over stdio.
func NewRemoteRegistry(ctx context.Context, command string, env []string, args ...string) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistrySSE connects to an MCP server over SSE.
func NewRemoteRegistrySSE(ctx context.Context, baseURL string) (*RemoteRegistry, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistryFromClient starts and initializes c, then fetches its
// tools. c is closed on failure.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "warden",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	r := &RemoteRegistry{
		client: c,
		tools:  make(map[string]ai.Tool),
	}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the MCP server.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]ai.Tool, len(result.Tools))
	for _, t := range result.Tools {
		r.tools[t.Name] = FromMCPTool(t)
	}
	return nil
}

// Names returns the names of all available tools, sorted.
func (r *RemoteRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetTool retrieves a tool definition by name.
func (r *RemoteRegistry) GetTool(name string) (ai.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Execute calls a tool on the remote MCP server. Transport failures are
// reported in the result so the model can recover.
func (r *RemoteRegistry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	result, err := r.client.CallTool(ctx, ToMCPCallToolRequest(call))
	if err != nil {
		return ai.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}
	return FromMCPCallToolResult(call.ID, result), nil
}

// RegisterInto adds every remote tool to reg with a handler proxying to
// the server. It fails on the first name reg already holds.
func (r *RemoteRegistry) RegisterInto(reg *tool.Registry) error {
	for _, name := range r.Names() {
		t, _ := r.GetTool(name)
		if err := reg.Register(t, r.handler()); err != nil {
			return err
		}
	}
	return nil
}

func (r *RemoteRegistry) handler() tool.Handler {
	return func(ctx context.Context, call ai.ToolCall) (string, error) {
		res, err := r.Execute(ctx, call)
		if err != nil {
			return "", err
		}
		if res.IsError {
			return "", errors.New(res.Content)
		}
		return res.Content, nil
	}
}
