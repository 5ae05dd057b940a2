package llm

import "context"

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	// Ask sends one system + user exchange and returns the raw reply text.
	// Implementations must request a JSON-only reply where the provider
	// supports it and must not retry on their own.
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
