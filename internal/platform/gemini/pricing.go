package gemini

import "github.com/menupick/menupick/internal/config"

// EstimateCost converts token counts into a dollar estimate using the
// configured per-million-token prices. Informational only: it feeds the
// usage log line and nothing else.
func EstimateCost(cfg config.LLMConfig, promptTokens, outputTokens int32) float64 {
	const tokensPerPriceUnit = 1_000_000

	inputCost := float64(promptTokens) / tokensPerPriceUnit * cfg.InputPricePerMTok
	outputCost := float64(outputTokens) / tokensPerPriceUnit * cfg.OutputPricePerMTok
	return inputCost + outputCost
}
