package openai

import (
	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/provider"
)

func convertMessages(options *ai.Options, messages []ai.Message) []openai.ChatCompletionMessageParamUnion {
	var result []openai.ChatCompletionMessageParamUnion
	if system := provider.SystemPrompt(options, messages); system != "" {
		result = append(result, openai.SystemMessage(system))
	}

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			continue
		case ai.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					}
				}
				assistantMsg := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
				if msg.Content != "" {
					assistantMsg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					}
				}
				result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistantMsg})
			} else if msg.Content != "" {
				result = append(result, openai.AssistantMessage(msg.Content))
			}
		case ai.RoleTool:
			// one message per tool result
			for _, tr := range msg.ToolResults {
				result = append(result, openai.ToolMessage(tr.Content, tr.ToolCallID))
			}
		default:
			if msg.Content != "" {
				result = append(result, openai.UserMessage(msg.Content))
			}
		}
	}
	return result
}
