package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/tool"
)

// Profile describes who an agent plays.
type Profile struct {
	Role      string `mapstructure:"role" yaml:"role"`
	Goal      string `mapstructure:"goal" yaml:"goal"`
	Backstory string `mapstructure:"backstory" yaml:"backstory"`
}

// SystemPrompt renders the profile as a system prompt.
func (p Profile) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", strings.TrimSpace(p.Role))
	if p.Backstory != "" {
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(p.Backstory))
	}
	if p.Goal != "" {
		b.WriteString("\nYour personal goal is: ")
		b.WriteString(strings.TrimSpace(p.Goal))
	}
	return b.String()
}

// Result holds the outcome of one agent run.
type Result struct {
	// Response is the final model response.
	Response *ai.Response

	// Steps is the number of model round trips taken.
	Steps int

	// TotalUsage sums token usage across all round trips.
	TotalUsage ai.Usage

	// History is the full conversation, including tool calls and results.
	History []ai.Message
}

// Agent is a tool-calling Capability backed by a chat provider.
type Agent struct {
	Profile

	provider ai.ChatProvider
	registry *tool.Registry
	options  *Options
}

// New creates an agent. A nil registry means the agent has no tools.
func New(provider ai.ChatProvider, registry *tool.Registry, profile Profile, opts ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	return &Agent{
		Profile:  profile,
		provider: provider,
		registry: registry,
		options:  ApplyOptions(opts...),
	}
}

// Tools returns the names of the tools available to the agent.
func (a *Agent) Tools() []string {
	return a.registry.Names()
}

// Execute runs the task and returns the model's final answer.
func (a *Agent) Execute(ctx context.Context, task Task) (string, error) {
	result, err := a.Run(ctx, task)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(result.Response.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// Run executes the tool-calling loop until the model answers without tool
// calls, the step limit is hit, or ctx is done.
func (a *Agent) Run(ctx context.Context, task Task) (*Result, error) {
	options := a.options
	log := options.Logger.With("role", a.Role)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	chatOpts := []ai.Option{ai.WithSystem(a.SystemPrompt())}
	if a.registry.Len() > 0 {
		chatOpts = append(chatOpts, ai.WithTools(a.registry.Tools()))
	}
	chatOpts = append(chatOpts, options.ChatOptions...)

	result := &Result{
		History: []ai.Message{ai.NewUserMessage(task.Prompt())},
	}

	for step := 1; ; step++ {
		if err := ctxError(ctx); err != nil {
			return result, err
		}
		if options.MaxSteps > 0 && step > options.MaxSteps {
			return result, ErrMaxStepsReached
		}

		start := time.Now()
		response, err := a.provider.Chat(ctx, result.History, chatOpts...)
		if err != nil {
			if ctxErr := ctxError(ctx); ctxErr != nil {
				return result, ctxErr
			}
			return result, err
		}

		result.Steps = step
		result.Response = response
		result.TotalUsage = result.TotalUsage.Add(response.Usage)
		log.Debug("agent step",
			"step", step,
			"tool_calls", len(response.ToolCalls),
			"duration", time.Since(start))

		if !response.HasToolCalls() {
			result.History = append(result.History, ai.Message{
				ID:      ai.GenerateMessageID(),
				Role:    ai.RoleAssistant,
				Content: response.Content,
			})
			return result, nil
		}

		result.History = append(result.History, ai.Message{
			ID:        ai.GenerateMessageID(),
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		var results []ai.ToolResult
		if options.ParallelToolCalls && len(response.ToolCalls) > 1 {
			results, err = a.executeToolCallsParallel(ctx, response.ToolCalls)
		} else {
			results, err = a.executeToolCallsSequential(ctx, response.ToolCalls)
		}
		if err != nil {
			return result, err
		}
		result.History = append(result.History, ai.NewToolResultMessage(results...))
	}
}

func (a *Agent) executeToolCallsSequential(ctx context.Context, toolCalls []ai.ToolCall) ([]ai.ToolResult, error) {
	results := make([]ai.ToolResult, len(toolCalls))
	for i, tc := range toolCalls {
		var err error
		if results[i], err = a.executeToolCall(ctx, tc); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (a *Agent) executeToolCallsParallel(ctx context.Context, toolCalls []ai.ToolCall) ([]ai.ToolResult, error) {
	results := make([]ai.ToolResult, len(toolCalls))
	errs := make([]error, len(toolCalls))
	var wg sync.WaitGroup

	for i, tc := range toolCalls {
		wg.Add(1)
		go func(idx int, call ai.ToolCall) {
			defer wg.Done()
			results[idx], errs[idx] = a.executeToolCall(ctx, call)
		}(i, tc)
	}

	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// executeToolCall runs one call. Failures go back to the model as error
// results, except transient ones when FailOnTransientToolError is set.
func (a *Agent) executeToolCall(ctx context.Context, tc ai.ToolCall) (ai.ToolResult, error) {
	execCtx := ctx
	if a.options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, a.options.HandlerTimeout)
		defer cancel()
	}

	start := time.Now()
	content, err := a.registry.Call(execCtx, tc)
	result := tool.ToolResult(tc, content, err)

	a.options.Logger.Debug("tool call",
		"role", a.Role,
		"tool", tc.Name,
		"is_error", result.IsError,
		"category", ai.CategoryOf(err),
		"duration", time.Since(start))

	if err != nil && a.options.FailOnTransientToolError && retry.IsTransient(err) {
		return result, fmt.Errorf("agent: tool %s: %w", tc.Name, err)
	}
	return result, nil
}

func ctxError(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAgentTimeout, err)
	}
	return err
}
