package triage

import (
	"log/slog"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/agent"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/model"
	"github.com/spetersoncode/warden/tool"
)

// Tools builds the registry of built-in tools from cfg.
func Tools(cfg Config, opts ...tool.HTTPOption) *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Confluence(cfg.Confluence, opts...),
		tool.Splunk(cfg.Splunk, opts...),
		tool.Email(cfg.SMTP),
	)
}

// CapabilityOption configures NewCapabilities.
type CapabilityOption func(grants map[string][]string)

// WithAgentTools grants the agent with the given key (crawler, classifier,
// investigator, notifier) extra tools from the registry.
func WithAgentTools(agentKey string, names ...string) CapabilityOption {
	return func(grants map[string][]string) {
		grants[agentKey] = append(grants[agentKey], names...)
	}
}

// NewCapabilities builds the four LLM-backed agents. Each agent only sees
// the tool it needs plus any granted extras; the classifier has none by
// default. A transient tool failure (backend 429/5xx, network error) fails
// the capability call, which is retried according to cfg.Retry.
func NewCapabilities(cfg Config, llm ai.ChatProvider, tools *tool.Registry, logger *slog.Logger, opts ...CapabilityOption) (Capabilities, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m, err := model.Parse(cfg.Model)
	if err != nil {
		return Capabilities{}, err
	}

	agentOpts := []agent.Option{
		agent.WithModel(m),
		agent.WithMaxSteps(cfg.MaxSteps),
		agent.WithHandlerTimeout(cfg.Timeouts.Tool),
		agent.WithFailOnTransientToolError(true),
		agent.WithLogger(logger),
	}

	grants := map[string][]string{}
	for _, opt := range opts {
		opt(grants)
	}

	build := func(key string, profile agent.Profile, toolNames ...string) (agent.Capability, error) {
		reg, err := tools.Subset(append(toolNames, grants[key]...)...)
		if err != nil {
			return nil, err
		}
		a := agent.New(llm, reg, profile, agentOpts...)
		return agent.WithRetryEvents(a, cfg.Retry, retryLogger(logger, profile.Role)), nil
	}

	var caps Capabilities
	if caps.Crawler, err = build("crawler", cfg.Agents.Crawler, tool.ConfluenceCrawlerName); err != nil {
		return Capabilities{}, err
	}
	if caps.Classifier, err = build("classifier", cfg.Agents.Classifier); err != nil {
		return Capabilities{}, err
	}
	if caps.Investigator, err = build("investigator", cfg.Agents.Investigator, tool.SplunkLogFetcherName); err != nil {
		return Capabilities{}, err
	}
	if caps.Notifier, err = build("notifier", cfg.Agents.Notifier, tool.EmailSenderName); err != nil {
		return Capabilities{}, err
	}
	return caps, nil
}

func retryLogger(logger *slog.Logger, role string) retry.Observer {
	return func(e retry.Event) {
		if e.Type != retry.EventRetrying {
			return
		}
		logger.Warn("retrying capability",
			"role", role,
			"attempt", e.Attempt,
			"max_attempts", e.MaxAttempts,
			"delay", e.Delay)
	}
}
