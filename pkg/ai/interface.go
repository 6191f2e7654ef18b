package ai

import (
	"context"
	"errors"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Completion is the result of a chat call, including the token usage and the
// vendor-reported cost (absent for vendors that do not report one).
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	CostDollars      *float64
}

// ChatClient is the interface for LLM chat completion providers.
type ChatClient interface {
	ChatCompletion(ctx context.Context, apiKey, model string, messages []Message) (*Completion, error)
}

// ErrInvalidKey signals the vendor rejected the API key (HTTP 401/403),
// distinguishable from transient vendor failures.
var ErrInvalidKey = errors.New("invalid provider API key")

// DefaultModel is used for credit-funded completions when the caller requests none.
const DefaultModel = "llama-3.3-70b-versatile"

// creditModels is the allowlist of models usable with prepaid credits.
var creditModels = map[string]bool{
	"llama-3.3-70b-versatile": true,
	"llama-3.1-8b-instant":    true,
	"openai/gpt-oss-20b":      true,
}

// ModelAllowed reports whether a model may be billed against credits.
func ModelAllowed(model string) bool {
	return creditModels[model]
}
