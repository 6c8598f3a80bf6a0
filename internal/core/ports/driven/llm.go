package driven

import "context"

// LLMService answers analysis prompts with a language model.
// This is an optional service - when nil, the rules analyzer is used.
//
// Implementations include:
//   - OpenAI (and OpenAI-compatible gateways)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Complete sends one system + user prompt pair and returns the reply.
	Complete(ctx context.Context, req Completion) (*Reply, error)

	// ModelName returns the name of the model answering prompts.
	ModelName() string

	// Ping checks that the backend is reachable without running inference
	// where the backend allows it.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Completion is a single analysis prompt.
type Completion struct {
	// System sets the persona and output rules.
	System string

	// Prompt is the rendered flow prompt.
	Prompt string

	// MaxTokens caps the reply. Zero lets the backend choose.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// JSON asks for a single JSON object. Backends without a native
	// JSON mode add an instruction to the system prompt instead.
	JSON bool
}

// Reply is the model answer plus the token usage reported by the backend.
type Reply struct {
	Text             string
	PromptTokens     int
	CompletionTokens int

	// Truncated is set when the model stopped at the token cap, which
	// usually leaves a JSON reply unterminated.
	Truncated bool
}
