package driven

import "context"

// GenerationRequest is a single answer-generation call.
type GenerationRequest struct {
	// SystemPrompt sets the assistant's behaviour.
	SystemPrompt string

	// Prompt is the user-visible content, including retrieved context.
	Prompt string

	// Temperature controls randomness.
	Temperature float64

	// MaxTokens caps the completion length.
	MaxTokens int

	// Stream asks the provider for incremental delivery. Adapters
	// aggregate the streamed pieces back into one result, so callers see
	// the same GenerationResult either way.
	Stream bool
}

// GenerationResult is the model's answer plus token accounting.
type GenerationResult struct {
	// Content is the generated answer text.
	Content string

	// Model is the model that produced the answer.
	Model string

	// FinishReason is why generation stopped ("stop", "length", ...).
	FinishReason string

	// PromptTokens is the prompt size reported by the provider, or a
	// local estimate when the provider omits usage.
	PromptTokens int

	// CompletionTokens is the completion size.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
}

// GenerationService produces answers from an LLM provider.
type GenerationService interface {
	// Generate produces a completion for the request.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)

	// ModelName returns the configured model identifier.
	ModelName() string

	// CheckHealth verifies the provider is reachable and the credentials
	// are accepted.
	CheckHealth(ctx context.Context) error

	// Close releases the client.
	Close() error
}
