// Package openai adapts the OpenAI Chat Completions API to ai.ChatProvider.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/spetersoncode/warden"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gpt-5-mini"

// ErrNoChoices is returned when the API answers without any completion choice.
var ErrNoChoices = errors.New("openai: response contained no choices")

// Client wraps the OpenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...option.RequestOption) *Client {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Client{
		client: &client,
		model:  DefaultModel,
	}
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	params := openai.ChatCompletionNewParams{
		Model:    options.ModelName(c.model),
		Messages: convertMessages(options, messages),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	return &ai.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ToolCalls: extractToolCalls(choice.Message),
	}, nil
}

func wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// network errors are left to the retry heuristics
		return err
	}
	return ai.NewStatusError("openai", apiErr.StatusCode, ai.ParseRetryAfter(apiErr.Response), err)
}

var _ ai.ChatProvider = (*Client)(nil)
