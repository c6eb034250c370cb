package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider implements ai.ChatProvider for testing.
type mockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	callCount int
	calls     [][]ai.Message
	options   []*ai.Options
}

type mockResponse struct {
	content   string
	toolCalls []ai.ToolCall
	err       error
}

func (m *mockProvider) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]ai.Message(nil), messages...))
	m.options = append(m.options, ai.ApplyOptions(opts...))

	if m.callCount >= len(m.responses) {
		return &ai.Response{Content: "No more responses"}, nil
	}
	resp := m.responses[m.callCount]
	m.callCount++
	if resp.err != nil {
		return nil, resp.err
	}
	return &ai.Response{
		Content:   resp.content,
		ToolCalls: resp.toolCalls,
		Usage:     ai.Usage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

type lookupArgs struct {
	Query string `json:"query"`
}

func lookupRegistry() *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func("lookup", "Look something up",
			func(ctx context.Context, args lookupArgs) (string, error) {
				return "found: " + args.Query, nil
			}),
		tool.Func("broken", "Always fails",
			func(ctx context.Context, args lookupArgs) (string, error) {
				return "", errors.New("upstream unavailable")
			}),
	)
}

var analyst = Profile{
	Role:      "Security Analyst",
	Goal:      "Investigate potential security incidents",
	Backstory: "Expert in analyzing logs.",
}

func TestProfile_SystemPrompt(t *testing.T) {
	prompt := analyst.SystemPrompt()

	assert.True(t, strings.HasPrefix(prompt, "You are Security Analyst."))
	assert.Contains(t, prompt, "Expert in analyzing logs.")
	assert.Contains(t, prompt, "Your personal goal is: Investigate potential security incidents")
}

func TestTask_Prompt(t *testing.T) {
	t.Run("includes context and expected output", func(t *testing.T) {
		prompt := Task{
			Description:    "Classify this document.",
			ExpectedOutput: "A single keyword.",
			Context:        "Failed logins from 10.0.0.7",
		}.Prompt()

		assert.Equal(t, "Classify this document.\n\nContext:\nFailed logins from 10.0.0.7\n\nExpected output: A single keyword.", prompt)
	})

	t.Run("omits empty sections", func(t *testing.T) {
		assert.Equal(t, "Crawl the page.", Task{Description: "Crawl the page."}.Prompt())
	})
}

func TestAgent_Execute(t *testing.T) {
	t.Run("returns the answer without tool calls", func(t *testing.T) {
		provider := &mockProvider{responses: []mockResponse{{content: "  splunk investigation needed  "}}}
		a := New(provider, nil, analyst)

		out, err := a.Execute(context.Background(), Task{Description: "Decide."})

		require.NoError(t, err)
		assert.Equal(t, "splunk investigation needed", out)
		require.Len(t, provider.options, 1)
		assert.Contains(t, provider.options[0].System, "Security Analyst")
		assert.Empty(t, provider.options[0].Tools)
	})

	t.Run("empty answer is an error", func(t *testing.T) {
		provider := &mockProvider{responses: []mockResponse{{content: "   "}}}
		_, err := New(provider, nil, analyst).Execute(context.Background(), Task{Description: "Decide."})

		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("provider errors propagate", func(t *testing.T) {
		boom := ai.NewPermanentError("invalid api key", 401, nil)
		provider := &mockProvider{responses: []mockResponse{{err: boom}}}

		_, err := New(provider, nil, analyst).Execute(context.Background(), Task{Description: "Decide."})

		assert.ErrorIs(t, err, boom)
	})
}

func TestAgent_ToolLoop(t *testing.T) {
	provider := &mockProvider{responses: []mockResponse{
		{toolCalls: []ai.ToolCall{{ID: "call_1", Name: "lookup", Arguments: `{"query":"index=auth"}`}}},
		{content: "logs: none found"},
	}}
	a := New(provider, lookupRegistry(), analyst)

	result, err := a.Run(context.Background(), Task{Description: "Investigate."})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, "logs: none found", result.Response.Content)
	assert.Equal(t, ai.Usage{InputTokens: 20, OutputTokens: 40}, result.TotalUsage)

	require.Len(t, provider.options, 2)
	assert.Len(t, provider.options[0].Tools, 2)

	// The second call sees the assistant tool call and its result.
	second := provider.calls[1]
	require.Len(t, second, 3)
	assert.Equal(t, ai.RoleAssistant, second[1].Role)
	assert.Equal(t, ai.RoleTool, second[2].Role)
	require.Len(t, second[2].ToolResults, 1)
	assert.Equal(t, "found: index=auth", second[2].ToolResults[0].Content)
	assert.Equal(t, "call_1", second[2].ToolResults[0].ToolCallID)

	assert.Len(t, result.History, 4)
	assert.Equal(t, []string{"broken", "lookup"}, a.Tools())
}

func TestAgent_ToolErrorsAreFedBack(t *testing.T) {
	provider := &mockProvider{responses: []mockResponse{
		{toolCalls: []ai.ToolCall{
			{ID: "call_1", Name: "broken", Arguments: `{}`},
			{ID: "call_2", Name: "missing", Arguments: `{}`},
		}},
		{content: "could not complete"},
	}}
	a := New(provider, lookupRegistry(), analyst, WithParallelToolCalls(true))

	out, err := a.Execute(context.Background(), Task{Description: "Investigate."})

	require.NoError(t, err)
	assert.Equal(t, "could not complete", out)

	results := provider.calls[1][2].ToolResults
	require.Len(t, results, 2)
	assert.True(t, results[0].IsError)
	assert.Equal(t, "upstream unavailable", results[0].Content)
	assert.True(t, results[1].IsError)
	assert.Contains(t, results[1].Content, "missing")
}

func TestAgent_TransientToolErrorEndsRun(t *testing.T) {
	unavailable := &tool.ErrUpstream{Service: "splunk", Code: 503}
	reg := tool.NewRegistry().Add(
		tool.Func("splunk_log_fetcher", "Search logs",
			func(ctx context.Context, args lookupArgs) (string, error) {
				return "", unavailable
			}),
	)
	script := func() *mockProvider {
		return &mockProvider{responses: []mockResponse{
			{toolCalls: []ai.ToolCall{{ID: "call_1", Name: "splunk_log_fetcher", Arguments: `{"query":"failed login"}`}}},
			{content: "logs: none found"},
		}}
	}

	// By default the model sees the failure and may answer anyway.
	out, err := New(script(), reg, analyst).Execute(context.Background(), Task{Description: "Investigate."})
	require.NoError(t, err)
	assert.Equal(t, "logs: none found", out)

	provider := script()
	_, err = New(provider, reg, analyst, WithFailOnTransientToolError(true)).Execute(context.Background(), Task{Description: "Investigate."})
	require.ErrorIs(t, err, unavailable)
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 1, provider.callCount)
}

func TestAgent_PermanentToolErrorIsFedBack(t *testing.T) {
	reg := tool.NewRegistry().Add(
		tool.Func("splunk_log_fetcher", "Search logs",
			func(ctx context.Context, args lookupArgs) (string, error) {
				return "", &tool.ErrUpstream{Service: "splunk", Code: 401}
			}),
	)
	provider := &mockProvider{responses: []mockResponse{
		{toolCalls: []ai.ToolCall{{ID: "call_1", Name: "splunk_log_fetcher", Arguments: `{}`}}},
		{content: "splunk rejected the credentials"},
	}}

	out, err := New(provider, reg, analyst, WithFailOnTransientToolError(true), WithParallelToolCalls(true)).
		Execute(context.Background(), Task{Description: "Investigate."})

	require.NoError(t, err)
	assert.Equal(t, "splunk rejected the credentials", out)
	assert.True(t, provider.calls[1][2].ToolResults[0].IsError)
}

func TestAgent_MaxSteps(t *testing.T) {
	loop := mockResponse{toolCalls: []ai.ToolCall{{ID: "c", Name: "lookup", Arguments: `{"query":"x"}`}}}
	provider := &mockProvider{responses: []mockResponse{loop, loop, loop, loop}}
	a := New(provider, lookupRegistry(), analyst, WithMaxSteps(3))

	result, err := a.Run(context.Background(), Task{Description: "Investigate."})

	assert.ErrorIs(t, err, ErrMaxStepsReached)
	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, 3, provider.callCount)
}

func TestAgent_Timeout(t *testing.T) {
	blocking := ai.ChatFunc(func(ctx context.Context, _ []ai.Message, _ ...ai.Option) (*ai.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	a := New(blocking, nil, analyst, WithTimeout(10*time.Millisecond))

	_, err := a.Execute(context.Background(), Task{Description: "Crawl."})

	assert.ErrorIs(t, err, ErrAgentTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAgent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &mockProvider{responses: []mockResponse{{content: "never"}}}
	_, err := New(provider, nil, analyst).Execute(ctx, Task{Description: "Crawl."})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.callCount)
}

func TestApplyOptions_Defaults(t *testing.T) {
	opts := ApplyOptions()

	assert.Equal(t, 10, opts.MaxSteps)
	assert.Equal(t, 30*time.Second, opts.HandlerTimeout)
	assert.False(t, opts.ParallelToolCalls)
	assert.False(t, opts.FailOnTransientToolError)
	assert.NotNil(t, opts.Logger)
}
