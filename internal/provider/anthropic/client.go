// Package anthropic adapts the Anthropic Messages API to ai.ChatProvider.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/provider"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "claude-haiku-4-5"

// Client wraps the Anthropic SDK to implement ai.ChatProvider.
type Client struct {
	client *anthropic.Client
	model  string
}

// New creates a new Anthropic client with the given API key.
// Extra SDK request options (base URL, HTTP client) may be supplied.
func New(apiKey string, opts ...option.RequestOption) *Client {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Client{
		client: &client,
		model:  DefaultModel,
	}
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	maxTokens := int64(provider.DefaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.ModelName(c.model)),
		MaxTokens: maxTokens,
		Messages:  convertMessages(messages),
	}
	// Anthropic rejects empty text blocks
	if system := provider.SystemPrompt(options, messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 && options.ToolChoice != ai.ToolChoiceNone {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	content := ""
	var toolCalls []ai.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content += block.Text
		case "tool_use":
			toolCalls = append(toolCalls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	return &ai.Response{
		Content:      content,
		FinishReason: string(resp.StopReason),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		ToolCalls: toolCalls,
	}, nil
}

func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError("anthropic", apiErr.StatusCode, ai.ParseRetryAfter(apiErr.Response), err)
}

var _ ai.ChatProvider = (*Client)(nil)
