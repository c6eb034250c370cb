package warden

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMessageID(t *testing.T) {
	a := GenerateMessageID()
	b := GenerateMessageID()

	assert.True(t, strings.HasPrefix(a, "msg-"))
	assert.NotEqual(t, a, b)
}

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.NotEmpty(t, msg.ID)
}

func TestResponse_HasToolCalls(t *testing.T) {
	var nilResp *Response
	assert.False(t, nilResp.HasToolCalls())
	assert.False(t, (&Response{Content: "done"}).HasToolCalls())
	assert.True(t, (&Response{ToolCalls: []ToolCall{{ID: "1", Name: "x"}}}).HasToolCalls())
}

func TestUsage_Add(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 5}.Add(Usage{InputTokens: 3, OutputTokens: 2})
	assert.Equal(t, Usage{InputTokens: 13, OutputTokens: 7}, u)
}

func TestToolCall_DecodeArguments(t *testing.T) {
	var args struct {
		Query string `json:"query"`
	}

	require.NoError(t, ToolCall{Name: "search", Arguments: `{"query":"index=auth"}`}.DecodeArguments(&args))
	assert.Equal(t, "index=auth", args.Query)

	require.NoError(t, ToolCall{Name: "search"}.DecodeArguments(&args))

	err := ToolCall{Name: "search", Arguments: "{"}.DecodeArguments(&args)
	assert.ErrorContains(t, err, "search")
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage(
		ToolResult{ToolCallID: "call_1", Content: "ok"},
		ToolResult{ToolCallID: "call_2", Content: "failed", IsError: true},
	)

	assert.Equal(t, RoleTool, msg.Role)
	require.Len(t, msg.ToolResults, 2)
	assert.True(t, msg.ToolResults[1].IsError)
}

func TestApplyOptions(t *testing.T) {
	t.Run("returns empty options when no options provided", func(t *testing.T) {
		opts := ApplyOptions()
		assert.Nil(t, opts.Model)
		assert.Zero(t, opts.MaxTokens)
		assert.Nil(t, opts.Temperature)
		assert.Equal(t, "fallback", opts.ModelName("fallback"))
	})

	t.Run("applies multiple options", func(t *testing.T) {
		tools := []Tool{{Name: "confluence_crawler"}}
		opts := ApplyOptions(
			WithModel(testModel("claude-haiku-4-5")),
			WithSystem("You are a Security Analyst."),
			WithMaxTokens(1000),
			WithTemperature(0.2),
			WithTools(tools),
			WithToolChoice(ToolChoiceAuto),
		)

		assert.Equal(t, "claude-haiku-4-5", opts.ModelName("fallback"))
		assert.Equal(t, "You are a Security Analyst.", opts.System)
		assert.Equal(t, 1000, opts.MaxTokens)
		require.NotNil(t, opts.Temperature)
		assert.Equal(t, 0.2, *opts.Temperature)
		assert.Equal(t, tools, opts.Tools)
		assert.Equal(t, ToolChoiceAuto, opts.ToolChoice)
	})
}

type testModel string

func (m testModel) String() string { return string(m) }
