package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/provider/anthropic"
	"github.com/spetersoncode/warden/internal/provider/google"
	"github.com/spetersoncode/warden/internal/provider/openai"
	"github.com/spetersoncode/warden/internal/provider/vertex"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/model"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Vertex locates the Google Cloud project that serves Vertex AI models.
// Credentials come from Application Default Credentials.
type Vertex struct {
	Project  string
	Location string
}

// Defaults holds the default chat model. Its provider determines the backend.
type Defaults struct {
	Chat ai.Model
}

// Config holds configuration for creating a unified client.
type Config struct {
	APIKeys  APIKeys
	Vertex   Vertex
	Defaults Defaults

	// RetryConfig configures retry behavior for transient errors.
	// If nil, retry.DefaultConfig is used.
	RetryConfig *retry.Config

	// Providers replaces the SDK-backed provider for the given key.
	// Mostly useful in tests and for self-hosted gateways.
	Providers map[ai.Provider]ai.ChatProvider

	// OnEvent receives request and retry events synchronously.
	OnEvent func(Event)

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Client is a unified interface to all chat providers.
// Provider clients are lazily initialized when first needed.
type Client struct {
	apiKeys     APIKeys
	vertex      Vertex
	defaults    Defaults
	retryConfig retry.Config
	onEvent     func(Event)
	logger      *slog.Logger

	mu        sync.RWMutex
	providers map[ai.Provider]ai.ChatProvider
}

// New creates a unified client with the given configuration.
func New(cfg Config) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		apiKeys:     cfg.APIKeys,
		vertex:      cfg.Vertex,
		defaults:    cfg.Defaults,
		retryConfig: retryConfig,
		onEvent:     cfg.OnEvent,
		logger:      logger,
		providers:   make(map[ai.Provider]ai.ChatProvider),
	}
	for p, cp := range cfg.Providers {
		c.providers[p] = cp
	}
	return c
}

// providerOf resolves the provider that serves model m.
func providerOf(m ai.Model) (ai.Provider, error) {
	if pm, ok := m.(interface{ Provider() ai.Provider }); ok {
		return pm.Provider(), nil
	}
	parsed, err := model.Parse(m.String())
	if err != nil {
		return "", err
	}
	return parsed.Provider(), nil
}

// chatProvider returns the provider client, initializing it if needed.
func (c *Client) chatProvider(ctx context.Context, p ai.Provider, modelID string) (ai.ChatProvider, error) {
	c.mu.RLock()
	cp, ok := c.providers[p]
	c.mu.RUnlock()
	if ok {
		return cp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if cp, ok := c.providers[p]; ok {
		return cp, nil
	}

	switch p {
	case ai.ProviderAnthropic:
		if c.apiKeys.Anthropic == "" {
			return nil, &ErrMissingAPIKey{Provider: string(p), Model: modelID}
		}
		cp = anthropic.New(c.apiKeys.Anthropic)
	case ai.ProviderOpenAI:
		if c.apiKeys.OpenAI == "" {
			return nil, &ErrMissingAPIKey{Provider: string(p), Model: modelID}
		}
		cp = openai.New(c.apiKeys.OpenAI)
	case ai.ProviderGoogle:
		if c.apiKeys.Google == "" {
			return nil, &ErrMissingAPIKey{Provider: string(p), Model: modelID}
		}
		gc, err := google.New(ctx, c.apiKeys.Google)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google client: %w", err)
		}
		cp = gc
	case ai.ProviderVertex:
		if c.vertex.Project == "" || c.vertex.Location == "" {
			return nil, &ErrMissingVertexProject{Model: modelID}
		}
		vc, err := vertex.New(ctx, c.vertex.Project, c.vertex.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Vertex AI client: %w", err)
		}
		cp = vc
	default:
		return nil, &ErrUnsupportedProvider{Provider: string(p)}
	}

	c.providers[p] = cp
	return cp, nil
}

// Chat sends a conversation and returns a complete response.
// The model can be specified via ai.WithModel, or the default chat model is used.
// Transient errors are retried according to the client's retry configuration.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	m := options.Model
	if m == nil {
		m = c.defaults.Chat
	}
	if m == nil {
		return nil, &ErrNoModel{Operation: "chat"}
	}

	p, err := providerOf(m)
	if err != nil {
		return nil, err
	}
	cp, err := c.chatProvider(ctx, p, m.String())
	if err != nil {
		return nil, err
	}

	// Ensure model is passed to the underlying provider
	if options.Model == nil {
		opts = append([]ai.Option{ai.WithModel(m)}, opts...)
	}

	start := time.Now()
	c.emit(Event{Type: EventRequestStart, Operation: "chat", Provider: p, Model: m.String()})

	onRetry := func(re retry.Event) {
		if re.Type == retry.EventRetrying {
			c.logger.Warn("retrying chat request",
				"provider", p,
				"model", m.String(),
				"attempt", re.Attempt,
				"delay", re.Delay)
		}
		c.emit(Event{Type: EventRetry, Operation: "chat", Provider: p, Model: m.String(), Retry: &re})
	}

	resp, err := retry.DoWithEvents(ctx, c.retryConfig, onRetry, func(ctx context.Context) (*ai.Response, error) {
		return cp.Chat(ctx, messages, opts...)
	})
	if err != nil {
		c.emit(Event{
			Type:      EventRequestError,
			Operation: "chat",
			Provider:  p,
			Model:     m.String(),
			Duration:  time.Since(start),
			Error:     err,
		})
		return nil, err
	}

	c.emit(Event{
		Type:      EventRequestComplete,
		Operation: "chat",
		Provider:  p,
		Model:     m.String(),
		Duration:  time.Since(start),
		Usage:     &resp.Usage,
	})
	return resp, nil
}

var _ ai.ChatProvider = (*Client)(nil)
