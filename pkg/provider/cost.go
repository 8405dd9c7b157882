package provider

import "strings"

// modelPricing holds per-million-token pricing for known models.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// pricing maps model identifiers to their token costs in USD.
var pricing = map[string]modelPricing{
	// Claude 3 family
	"claude-3-opus-20240229":   {InputPerMillion: 15.0, OutputPerMillion: 75.0},
	"claude-3-sonnet-20240229": {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	"claude-3-haiku-20240307":  {InputPerMillion: 0.25, OutputPerMillion: 1.25},

	// Claude 3.5 family
	"claude-3-5-sonnet-20240620": {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	"claude-3-5-sonnet-20241022": {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	"claude-3-5-haiku-20241022":  {InputPerMillion: 0.80, OutputPerMillion: 4.0},

	// OpenAI
	"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	"gpt-4o":        {InputPerMillion: 2.50, OutputPerMillion: 10.0},
	"gpt-4o-mini":   {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4-turbo":   {InputPerMillion: 10.0, OutputPerMillion: 30.0},

	// Perplexity Sonar
	"sonar":     {InputPerMillion: 1.0, OutputPerMillion: 1.0},
	"sonar-pro": {InputPerMillion: 3.0, OutputPerMillion: 15.0},

	// xAI Grok
	"grok-2-latest": {InputPerMillion: 2.0, OutputPerMillion: 10.0},
	"grok-beta":     {InputPerMillion: 5.0, OutputPerMillion: 15.0},
}

// EstimateCost returns the estimated USD cost for the given model and usage.
// Dated snapshot names such as "gpt-3.5-turbo-0125" are priced as their base
// model. Returns 0 if the model is not in the pricing table.
func EstimateCost(model string, usage Usage) float64 {
	p, ok := lookupPricing(model)
	if !ok {
		return 0
	}
	inputCost := float64(usage.InputTokens) / 1_000_000 * p.InputPerMillion
	outputCost := float64(usage.OutputTokens) / 1_000_000 * p.OutputPerMillion
	return inputCost + outputCost
}

// lookupPricing matches model exactly, else the longest table entry that
// model extends with a "-" suffix.
func lookupPricing(model string) (modelPricing, bool) {
	if p, ok := pricing[model]; ok {
		return p, true
	}
	var best string
	for name := range pricing {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return modelPricing{}, false
	}
	return pricing[best], true
}
