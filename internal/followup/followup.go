// Package followup answers learner follow-up queries about a question.
package followup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/llm"
)

// ErrEmptyQuery is returned when the follow-up query is blank.
var ErrEmptyQuery = errors.New("query is empty")

// Responder produces an explanation for a follow-up query.
type Responder interface {
	Respond(ctx context.Context, questionText, query string) (string, error)
}

// Mock returns a fixed sample explanation.
type Mock struct{}

func (Mock) Respond(_ context.Context, _ string, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	return fmt.Sprintf("This is a sample explanation for '%s' related to the current question.", query), nil
}

const prompt = `Original question: %s
User follow-up query: %s

Provide a clear, educational explanation for the user's query in the context of the original question.
Give a step-by-step explanation if appropriate. Be thorough but concise.`

// LLM answers follow-up queries with a provider.
type LLM struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLM creates an LLM responder.
func NewLLM(provider llm.Provider) *LLM {
	return &LLM{provider: provider, maxTokens: 1024}
}

func (r *LLM) Respond(ctx context.Context, questionText, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeFollowUp)

	resp, err := r.provider.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(prompt, questionText, query),
		MaxTokens:   r.maxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("follow-up generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty follow-up response")}
	}
	return text, nil
}
