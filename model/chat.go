package model

import (
	"fmt"
	"strings"

	ai "github.com/spetersoncode/warden"
)

// ChatModel represents a chat/completion model from any provider.
type ChatModel struct {
	id       string
	provider ai.Provider
	pricing  ChatPricing
}

// String returns the API identifier for this model.
func (m ChatModel) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m ChatModel) Provider() ai.Provider { return m.provider }

// Pricing returns the pricing for this model.
func (m ChatModel) Pricing() ChatPricing { return m.pricing }

// Cost returns the USD cost of the given usage at this model's pricing.
func (m ChatModel) Cost(usage ai.Usage) float64 {
	return CalculateCost(usage, m.pricing)
}

// Anthropic Claude Models
var (
	ClaudeOpus45   = ChatModel{id: "claude-opus-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 5.00, OutputPerMillion: 25.00}}
	ClaudeSonnet45 = ChatModel{id: "claude-sonnet-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}}
	ClaudeHaiku45  = ChatModel{id: "claude-haiku-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 5.00}}
)

// OpenAI GPT and O-Series Models
var (
	GPT52    = ChatModel{id: "gpt-5.2", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.75, OutputPerMillion: 14.00}}
	GPT5     = ChatModel{id: "gpt-5", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	GPT5Mini = ChatModel{id: "gpt-5-mini", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.25, OutputPerMillion: 1.00}}
	O4Mini   = ChatModel{id: "o4-mini", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.50, OutputPerMillion: 2.00}}
)

// Google Gemini Models
var (
	Gemini25Pro   = ChatModel{id: "gemini-2.5-pro", provider: ai.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	Gemini25Flash = ChatModel{id: "gemini-2.5-flash", provider: ai.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}}
)

// Gemini models served through Vertex AI. They share IDs and pricing with
// the Gemini API models.
var (
	VertexGemini25Pro   = Gemini25Pro.OnVertex()
	VertexGemini25Flash = Gemini25Flash.OnVertex()
)

// VertexPrefix selects Vertex AI for a Gemini model ID in configuration.
const VertexPrefix = "vertex/"

// OnVertex returns m served through Vertex AI.
func (m ChatModel) OnVertex() ChatModel {
	m.provider = ai.ProviderVertex
	return m
}

// Default is the model used when configuration names none.
var Default = ClaudeHaiku45

var catalogue = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT52, GPT5, GPT5Mini, O4Mini,
	Gemini25Pro, Gemini25Flash,
}

// All returns every catalogued chat model.
func All() []ChatModel {
	out := make([]ChatModel, len(catalogue))
	copy(out, catalogue)
	return out
}

// Parse resolves a model ID from configuration.
//
// Catalogued IDs return their full definition. Unknown IDs are accepted when
// the provider can be inferred from the prefix (claude-, gpt-, o<digit>,
// gemini-); such models carry no pricing. A "vertex/" prefix routes a
// Gemini model through Vertex AI.
func Parse(id string) (ChatModel, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Default, nil
	}
	if rest, ok := strings.CutPrefix(id, VertexPrefix); ok {
		m, err := Parse(rest)
		if err != nil {
			return ChatModel{}, err
		}
		if rest == "" || m.provider != ai.ProviderGoogle {
			return ChatModel{}, fmt.Errorf("model: %q is not a Gemini model", id)
		}
		return m.OnVertex(), nil
	}
	for _, m := range catalogue {
		if m.id == id {
			return m, nil
		}
	}

	var p ai.Provider
	switch {
	case strings.HasPrefix(id, "claude-"):
		p = ai.ProviderAnthropic
	case strings.HasPrefix(id, "gpt-"), len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9':
		p = ai.ProviderOpenAI
	case strings.HasPrefix(id, "gemini-"):
		p = ai.ProviderGoogle
	default:
		return ChatModel{}, fmt.Errorf("model: cannot infer provider for %q", id)
	}
	return ChatModel{id: id, provider: p}, nil
}
