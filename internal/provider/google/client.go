// Package google adapts the Gemini API (google.golang.org/genai) to ai.ChatProvider.
package google

import (
	"context"
	"errors"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/provider"
	"google.golang.org/genai"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *genai.Client
	name   string
	model  string
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	return NewWithConfig(ctx, "google", &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewWithConfig creates a client for any genai backend. name prefixes the
// errors it returns.
func NewWithConfig(ctx context.Context, name string, cfg *genai.ClientConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, name: name, model: DefaultModel}, nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	config := &genai.GenerateContentConfig{}
	if system := provider.SystemPrompt(options, messages); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, options.ModelName(c.model), convertMessages(messages), config)
	if err != nil {
		return nil, wrapError(c.name, err)
	}

	out := &ai.Response{}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.FinishReason = string(cand.FinishReason)
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				out.Content += part.Text
			}
			out.ToolCalls = extractToolCalls(cand.Content.Parts)
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.Usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// wrapError categorizes genai.APIError values. The Gemini API does not expose
// response headers, so no Retry-After is available.
func wrapError(name string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ai.NewStatusError(name, apiErr.Code, 0, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return ai.NewStatusError(name, apiErrPtr.Code, 0, err)
	}
	return err
}

var _ ai.ChatProvider = (*Client)(nil)
