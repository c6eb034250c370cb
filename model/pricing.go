package model

import ai "github.com/spetersoncode/warden"

// ChatPricing contains pricing per million tokens (USD) for chat models.
type ChatPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// IsZero reports whether no pricing is known.
func (p ChatPricing) IsZero() bool {
	return p.InputPerMillion == 0 && p.OutputPerMillion == 0
}

// CalculateCost returns the USD cost of usage at the given pricing.
func CalculateCost(usage ai.Usage, pricing ChatPricing) float64 {
	in := float64(usage.InputTokens) / 1_000_000 * pricing.InputPerMillion
	out := float64(usage.OutputTokens) / 1_000_000 * pricing.OutputPerMillion
	return in + out
}
