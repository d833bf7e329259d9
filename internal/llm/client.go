package llm

import "context"

// GenConfig tunes one generation call.
type GenConfig struct {
	Temperature float64
	MaxTokens   int
}

// Client generates text for a prompt. The agent treats the LLM as a
// last-resort fallback, so implementations must fail fast and cleanly:
// a returned error always has a rule-based answer to fall back to.
type Client interface {
	Generate(ctx context.Context, prompt string, cfg GenConfig) (string, error)
}
