package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ProviderName is recorded as the provider on every logged request.
const ProviderName = "gemini"

// Short aliases accepted in ADAPTIQ_GEMINI_MODEL. Anything else is sent to
// the API unchanged.
var modelAliases = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.5-pro",
	"gemini-lite":  "gemini-2.0-flash-lite",
}

func resolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}

// GeminiProvider talks to the Gemini API through the genai SDK.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	schemas *schemaSet
}

// NewGeminiProvider builds a client for cfg.Model using cfg.APIKey.
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	if !usableKey(cfg.APIKey) {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:  client,
		model:   resolveModel(cfg.Model),
		schemas: newSchemaSet(),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		generationConfig(req))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	resp := &Response{
		Content:    json.RawMessage(result.Text()),
		Model:      p.model,
		StopReason: "end",
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		resp.StopReason = "max_tokens"
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}

	if req.Schema != nil {
		if resp.StopReason == "max_tokens" {
			return nil, &ErrMaxTokensExceeded{Content: resp.Content}
		}
		content, err := p.schemas.structured(req.Schema, result.Text())
		if err != nil {
			return nil, err
		}
		resp.Content = content
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func generationConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGeminiSchema(req.Schema.Definition)
	}
	return cfg
}

// toGeminiSchema converts the subset of JSON Schema used by QuestionSchema
// (type, description, properties, required, enum, items) to genai.Schema.
// Keywords Gemini does not accept, such as additionalProperties, are dropped.
func toGeminiSchema(def map[string]any) *genai.Schema {
	out := &genai.Schema{}
	for key, v := range def {
		switch key {
		case "type":
			if t, ok := v.(string); ok {
				out.Type = geminiType(t)
			}
		case "description":
			out.Description, _ = v.(string)
		case "properties":
			props, _ := v.(map[string]any)
			out.Properties = make(map[string]*genai.Schema, len(props))
			for name, pv := range props {
				if pdef, ok := pv.(map[string]any); ok {
					out.Properties[name] = toGeminiSchema(pdef)
				}
			}
		case "required":
			out.Required = stringList(v)
		case "enum":
			out.Enum = stringList(v)
		case "items":
			if idef, ok := v.(map[string]any); ok {
				out.Items = toGeminiSchema(idef)
			}
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	}
	return genai.TypeString
}

func stringList(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// classifyGeminiError maps SDK errors onto this package's error types so
// Classify and the retry decorator can act on them.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	// The SDK returns APIError by value.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
