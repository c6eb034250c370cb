package model

import (
	"testing"

	ai "github.com/spetersoncode/warden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	pricing := ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 2.00}

	t.Run("calculates cost for standard usage", func(t *testing.T) {
		cost := CalculateCost(ai.Usage{InputTokens: 1000, OutputTokens: 500}, pricing)
		assert.InDelta(t, 0.002, cost, 0.0001)
	})

	t.Run("returns zero for zero usage", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateCost(ai.Usage{}, pricing))
	})
}

func TestChatModel_Cost(t *testing.T) {
	usage := ai.Usage{InputTokens: 10000, OutputTokens: 5000}
	// $3/M input, $15/M output
	assert.InDelta(t, 0.105, ClaudeSonnet45.Cost(usage), 0.0001)
}

func TestParse(t *testing.T) {
	tests := []struct {
		id       string
		provider ai.Provider
		priced   bool
	}{
		{"claude-haiku-4-5", ai.ProviderAnthropic, true},
		{"claude-3-7-sonnet-latest", ai.ProviderAnthropic, false},
		{"gpt-5-mini", ai.ProviderOpenAI, true},
		{"o3", ai.ProviderOpenAI, false},
		{"gemini-2.5-flash", ai.ProviderGoogle, true},
		{"vertex/gemini-2.5-pro", ai.ProviderVertex, true},
		{"vertex/gemini-3-pro-preview", ai.ProviderVertex, false},
		{"", Default.Provider(), true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			m, err := Parse(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, m.Provider())
			assert.Equal(t, tt.priced, !m.Pricing().IsZero())
		})
	}

	t.Run("vertex keeps the API id", func(t *testing.T) {
		m, err := Parse("vertex/gemini-2.5-flash")
		require.NoError(t, err)
		assert.Equal(t, VertexGemini25Flash, m)
		assert.Equal(t, "gemini-2.5-flash", m.String())
	})

	t.Run("vertex requires a Gemini model", func(t *testing.T) {
		for _, id := range []string{"vertex/claude-haiku-4-5", "vertex/"} {
			_, err := Parse(id)
			assert.ErrorContains(t, err, "not a Gemini model", id)
		}
	})

	t.Run("rejects unknown prefix", func(t *testing.T) {
		_, err := Parse("llama-3")
		assert.ErrorContains(t, err, "llama-3")
	})
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	all[0] = ChatModel{}
	assert.Equal(t, ClaudeOpus45, All()[0])
}
