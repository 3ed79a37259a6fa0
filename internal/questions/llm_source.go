package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/llm"
)

// LLMSource implements Source using an LLM provider.
type LLMSource struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMSource with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMSource {
	return &LLMSource{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	Text          string  `json:"text"`
	Options       Options `json:"options"`
	CorrectOption string  `json:"correct_option"`
	Explanation   string  `json:"explanation"`
}

// Generate produces a single question. Provider, parse and validation
// failures are returned as errors; there is no retry.
func (g *LLMSource) Generate(ctx context.Context, input Input) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(input, g.config),
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	raw, err := parseQuestion(resp.Text())
	if err != nil {
		return nil, err
	}

	correct := strings.ToLower(strings.TrimSpace(raw.CorrectOption))
	q := &Question{
		Text:          strings.TrimSpace(raw.Text),
		Options:       raw.Options,
		CorrectOption: correct,
		Answer:        strings.TrimSpace(raw.Options.Get(correct)),
		Explanation:   strings.TrimSpace(raw.Explanation),
		Difficulty:    input.Difficulty,
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: verr}
		}
	}

	return q, nil
}

// parseQuestion decodes model text, tolerating a Markdown code fence.
func parseQuestion(text string) (*questionOutput, error) {
	var raw questionOutput
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("parse question: %w", err),
		}
	}
	return &raw, nil
}
