package google

import (
	"encoding/json"

	ai "github.com/spetersoncode/warden"
	"google.golang.org/genai"
)

// convertMessages maps the conversation onto Gemini contents.
//
// Gemini matches function responses by function name rather than call ID, so
// the name of each tool call is remembered and looked up for its result.
func convertMessages(messages []ai.Message) []*genai.Content {
	var contents []*genai.Content
	callNames := make(map[string]string)

	for _, msg := range messages {
		var parts []*genai.Part
		role := genai.RoleUser

		switch msg.Role {
		case ai.RoleSystem:
			continue
		case ai.RoleAssistant:
			role = genai.RoleModel
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				callNames[tc.ID] = tc.Name
				args := map[string]any{}
				if tc.Arguments != "" {
					_ = json.Unmarshal([]byte(tc.Arguments), &args)
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
		case ai.RoleTool:
			for _, tr := range msg.ToolResults {
				name := callNames[tr.ToolCallID]
				if name == "" {
					name = tr.ToolCallID
				}
				key := "output"
				if tr.IsError {
					key = "error"
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       tr.ToolCallID,
						Name:     name,
						Response: map[string]any{key: tr.Content},
					},
				})
			}
		default:
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}

	return contents
}
