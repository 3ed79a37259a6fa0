package llm

import (
	"context"
	"encoding/json"
)

// Provider generates model output for a single-turn prompt. GeminiProvider is
// the backend; the decorators in this package (timeout, retry, logging) and
// MockProvider satisfy it as well.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is one prompt sent to the model.
type Request struct {
	// System is an optional system instruction.
	System string

	// Prompt is the user turn: a question-generation brief, a grading
	// question or a follow-up query.
	Prompt string

	// Schema requests JSON output. Nil asks for plain text.
	Schema *Schema

	MaxTokens int

	// Temperature of zero keeps the model default.
	Temperature float64
}

// Schema is a JSON Schema the model output must satisfy.
type Schema struct {
	// Name keys the compiled-schema cache, e.g. "quiz-question".
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output for a Request.
type Response struct {
	// Content holds schema-checked JSON when the Request carried a Schema,
	// otherwise the model text.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is the token count billed for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
