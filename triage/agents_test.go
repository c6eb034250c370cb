package triage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/tool"
	"github.com/spetersoncode/warden/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers according to the role in the system prompt and
// records the tools each role was offered.
type scriptedLLM struct {
	mu      sync.Mutex
	answers map[string]string
	tools   map[string][]string
	models  map[string]string
}

func (s *scriptedLLM) Chat(_ context.Context, _ []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	o := ai.ApplyOptions(opts...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for role, answer := range s.answers {
		if strings.HasPrefix(o.System, "You are "+role+".") {
			for _, t := range o.Tools {
				s.tools[role] = append(s.tools[role], t.Name)
			}
			s.models[role] = o.ModelName("")
			return &ai.Response{Content: answer}, nil
		}
	}
	return &ai.Response{Content: "unknown role"}, nil
}

func TestNewCapabilities_EndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "claude-haiku-4-5"

	llm := &scriptedLLM{
		answers: map[string]string{
			"Confluence Specialist":     "Unusual admin logins; escalate to Splunk.",
			"Security Analyst":          "splunk",
			"Splunk Investigator":       "logs: none found",
			"Communications Specialist": "email sent to soc-team@example",
		},
		tools:  map[string][]string{},
		models: map[string]string{},
	}

	caps, err := NewCapabilities(cfg, llm, Tools(cfg), nil)
	require.NoError(t, err)

	g, err := Build(caps, WithClassifier(cfg.Classifier), WithTasks(cfg.Tasks))
	require.NoError(t, err)

	result, err := NewRunner(g).Run(context.Background(), "policy-doc-42")
	require.NoError(t, err)

	out, _ := Output(result)
	assert.Equal(t, "logs: none found", out)
	assert.Equal(t, []string{StepCrawl, StepDecide, StepInvestigate}, result.Path)

	assert.Equal(t, []string{tool.ConfluenceCrawlerName}, llm.tools["Confluence Specialist"])
	assert.Empty(t, llm.tools["Security Analyst"])
	assert.Equal(t, []string{tool.SplunkLogFetcherName}, llm.tools["Splunk Investigator"])
	assert.Equal(t, "claude-haiku-4-5", llm.models["Security Analyst"])
}

func TestNewCapabilities_BadModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "llama-3"

	_, err := NewCapabilities(cfg, &scriptedLLM{}, Tools(cfg), nil)
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	reg := Tools(DefaultConfig())
	assert.Equal(t, []string{tool.ConfluenceCrawlerName, tool.EmailSenderName, tool.SplunkLogFetcherName}, reg.Names())
}

func TestNewCapabilities_AgentTools(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "claude-haiku-4-5"

	reg := Tools(cfg)
	reg.MustRegister(ai.Tool{Name: "ticket_search"}, func(context.Context, ai.ToolCall) (string, error) {
		return "no tickets", nil
	})

	llm := &scriptedLLM{
		answers: map[string]string{"Splunk Investigator": "logs: none found"},
		tools:   map[string][]string{},
		models:  map[string]string{},
	}
	caps, err := NewCapabilities(cfg, llm, reg, nil, WithAgentTools("investigator", "ticket_search"))
	require.NoError(t, err)

	_, err = caps.Investigator.Execute(context.Background(), Tasks{}.withDefaults().Investigate.task("page", "content"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{tool.SplunkLogFetcherName, "ticket_search"}, llm.tools["Splunk Investigator"])

	_, err = NewCapabilities(cfg, llm, reg, nil, WithAgentTools("notifier", "missing_tool"))
	var notFound *tool.ErrToolNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestConfig_ValidateRemoteTools(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoteTools = []RemoteTools{
		{Name: "tickets", Command: "ticket-mcp", Agents: []string{"investigator"}},
		{Name: "both", Command: "x", URL: "http://y"},
		{Name: "ghost", URL: "http://z", Agents: []string{"janitor"}},
	}
	err := cfg.Validate()
	assert.NotContains(t, err.Error(), "remote_tools[0]")
	assert.ErrorContains(t, err, "remote_tools[1] needs exactly one of command or url")
	assert.ErrorContains(t, err, `remote_tools[2]: unknown agent "janitor"`)
}

// investigatingLLM calls the Splunk tool once per investigation and reports
// what it returned; other roles get fixed answers.
type investigatingLLM struct{}

func (investigatingLLM) Chat(_ context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	o := ai.ApplyOptions(opts...)
	switch {
	case strings.HasPrefix(o.System, "You are Confluence Specialist."):
		return &ai.Response{Content: "Suspicious admin logins."}, nil
	case strings.HasPrefix(o.System, "You are Security Analyst."):
		return &ai.Response{Content: "splunk"}, nil
	case strings.HasPrefix(o.System, "You are Splunk Investigator."):
		last := messages[len(messages)-1]
		if last.Role == ai.RoleTool {
			return &ai.Response{Content: "logs: " + last.ToolResults[0].Content}, nil
		}
		return &ai.Response{ToolCalls: []ai.ToolCall{{
			ID: "call_1", Name: tool.SplunkLogFetcherName, Arguments: `{"query":"index=auth action=failure"}`,
		}}}, nil
	}
	return &ai.Response{Content: "unknown role"}, nil
}

func TestNewCapabilities_TransientBackendFailureIsRetried(t *testing.T) {
	var requests atomic.Int32
	splunk := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "search head restarting", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"preview":false,"result":{"_raw":"failed login for admin"}}`))
	}))
	t.Cleanup(splunk.Close)

	run := func(cfg Config) *workflow.Result {
		caps, err := NewCapabilities(cfg, investigatingLLM{}, Tools(cfg), nil)
		require.NoError(t, err)
		g, err := Build(caps, WithClassifier(cfg.Classifier), WithTasks(cfg.Tasks))
		require.NoError(t, err)
		result, _ := NewRunner(g).Run(context.Background(), "policy-doc-42")
		require.NotNil(t, result)
		return result
	}

	cfg := DefaultConfig()
	cfg.Splunk.BaseURL = splunk.URL

	// Without retry the 503 fails the investigate step instead of reaching the model.
	result := run(cfg)
	assert.Equal(t, workflow.TerminationError, result.Termination)
	step, _ := workflow.FailedStep(result.Error)
	assert.Equal(t, StepInvestigate, step)
	var upstream *tool.ErrUpstream
	assert.ErrorAs(t, result.Error, &upstream)
	_, ok := Output(result)
	assert.False(t, ok)

	requests.Store(0)
	cfg.Retry = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond}
	result = run(cfg)
	require.True(t, result.Completed(), "%v", result.Error)
	out, _ := Output(result)
	assert.Equal(t, "logs: failed login for admin", out)
	assert.Equal(t, int32(2), requests.Load())
}
