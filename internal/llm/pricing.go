package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns the pricing for a model ID as reported on responses,
// or nil if unknown. OpenRouter's vendor prefix ("google/...") is ignored,
// and versioned IDs such as "gpt-4o-mini-2024-07-18" match the longest
// priced base name.
func LookupCost(modelID string) *ModelCost {
	if _, name, ok := strings.Cut(modelID, "/"); ok {
		modelID = name
	}
	best := ""
	for base := range modelCosts {
		if (modelID == base || strings.HasPrefix(modelID, base+"-")) && len(base) > len(best) {
			best = base
		}
	}
	if best == "" {
		return nil
	}
	c := modelCosts[best]
	return &c
}

// modelCosts covers the vision models reachable through the friendly names
// in this package.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},

	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
