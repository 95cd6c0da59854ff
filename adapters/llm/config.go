package llm

import "time"

// Supported providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderHeuristic = "heuristic"
)

// Config holds LLM adapter configuration
type Config struct {
	Provider            string        // openai, anthropic or heuristic
	Model               string        // e.g., "gpt-4.1-mini"
	APIKey              string        // Provider API key
	BaseURL             string        // Optional override (default: https://api.openai.com/v1)
	Temperature         float64       // 0.0-1.0, lower = more deterministic
	MaxTokens           int           // Max tokens in response
	Timeout             time.Duration // Request timeout
	FallbackToHeuristic bool          // Fallback to heuristic on error
}
