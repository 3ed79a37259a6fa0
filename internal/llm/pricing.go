package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// Gemini API list prices. Aliases from modelAliases resolve first.
var modelCosts = map[string]ModelCost{
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}

// LookupCost prices a model ID as recorded on an event. Versioned IDs such
// as "gemini-2.0-flash-001" use the longest matching known prefix. Unknown
// models, including "mock", return nil.
func LookupCost(modelID string) *ModelCost {
	modelID = resolveModel(modelID)
	best := ""
	for id := range modelCosts {
		if strings.HasPrefix(modelID, id) && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return nil
	}
	c := modelCosts[best]
	return &c
}
