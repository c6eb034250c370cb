package tool

import (
	"context"
	"errors"
	"sort"
	"sync"

	ai "github.com/spetersoncode/warden"
)

type registeredTool struct {
	tool    ai.Tool
	handler Handler
}

// Registry manages registered tools and their handlers.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool with its handler to the registry.
func (r *Registry) Register(tool ai.Tool, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: tool.Name}
	}
	r.tools[tool.Name] = registeredTool{tool: tool, handler: handler}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool ai.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Add registers one or more tools and returns the registry for chaining.
// Panics if any tool is already registered.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		r.MustRegister(reg.Tool, reg.Handler)
	}
	return r
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.handler, true
}

// Tools returns all registered tool definitions ordered by name.
func (r *Registry) Tools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ai.Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		tools = append(tools, rt.tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Names returns the sorted names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Subset returns a new registry holding only the named tools.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := NewRegistry()
	for _, name := range names {
		rt, ok := r.tools[name]
		if !ok {
			return nil, &ErrToolNotFound{Name: name}
		}
		sub.tools[name] = rt
	}
	return sub, nil
}

// Call runs the handler for a tool call and returns its output and error
// unchanged. It returns ErrToolNotFound for an unregistered tool.
func (r *Registry) Call(ctx context.Context, call ai.ToolCall) (string, error) {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return "", &ErrToolNotFound{Name: call.Name}
	}
	return rt.handler(ctx, call)
}

// Execute runs the handler for a tool call and returns a ToolResult.
// If the tool is not found, returns ErrToolNotFound. Handler errors are
// captured in ToolResult.IsError so the model can recover.
func (r *Registry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	content, err := r.Call(ctx, call)
	var notFound *ErrToolNotFound
	if errors.As(err, &notFound) && notFound.Name == call.Name {
		return ai.ToolResult{}, err
	}
	return ToolResult(call, content, err), nil
}

// ToolResult packs a handler outcome into the result sent back to the model.
func ToolResult(call ai.ToolCall, content string, err error) ai.ToolResult {
	if err != nil {
		return ai.ToolResult{ToolCallID: call.ID, Content: err.Error(), IsError: true}
	}
	return ai.ToolResult{ToolCallID: call.ID, Content: content}
}
