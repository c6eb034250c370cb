package google

import (
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/warden"
	"google.golang.org/genai"
)

func convertTools(tools []ai.Tool) []*genai.Tool {
	funcs := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  convertSchema(t.Parameters),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

func convertToolChoice(choice ai.ToolChoice) *genai.ToolConfig {
	mode := genai.FunctionCallingConfigModeAuto
	switch choice {
	case ai.ToolChoiceNone:
		mode = genai.FunctionCallingConfigModeNone
	case ai.ToolChoiceRequired:
		mode = genai.FunctionCallingConfigModeAny
	}
	return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode}}
}

func extractToolCalls(parts []*genai.Part) []ai.ToolCall {
	var calls []ai.ToolCall
	for i, part := range parts {
		if part.FunctionCall == nil {
			continue
		}
		args, _ := json.Marshal(part.FunctionCall.Args)
		id := part.FunctionCall.ID
		if id == "" {
			id = fmt.Sprintf("call_%d_%s", i, part.FunctionCall.Name)
		}
		calls = append(calls, ai.ToolCall{
			ID:        id,
			Name:      part.FunctionCall.Name,
			Arguments: string(args),
		})
	}
	return calls
}

// convertSchema converts a JSON Schema document to a genai.Schema.
func convertSchema(schemaJSON json.RawMessage) *genai.Schema {
	if len(schemaJSON) == 0 {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil
	}
	return convertSchemaObject(schema)
}

func convertSchemaObject(schema map[string]any) *genai.Schema {
	result := &genai.Schema{}

	switch schema["type"] {
	case "string":
		result.Type = genai.TypeString
	case "number":
		result.Type = genai.TypeNumber
	case "integer":
		result.Type = genai.TypeInteger
	case "boolean":
		result.Type = genai.TypeBoolean
	case "array":
		result.Type = genai.TypeArray
	case "object":
		result.Type = genai.TypeObject
	}

	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}
	if enumVal, ok := schema["enum"].([]any); ok {
		for _, e := range enumVal {
			if s, ok := e.(string); ok {
				result.Enum = append(result.Enum, s)
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				result.Properties[name] = convertSchemaObject(propMap)
			}
		}
	}
	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		result.Items = convertSchemaObject(items)
	}

	return result
}
