package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// LoggingProvider appends one llm_request_events row per call. The rows
// back `adaptiq llm list|view|stats`.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
}

func WithLogging(p Provider, events store.EventRepo) Provider {
	return &LoggingProvider{inner: p, events: events}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    ProviderName,
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: requestBody(req),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	// Outlive a cancelled request so timeouts are still recorded.
	if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
		slog.Warn("llm event not recorded", "purpose", purpose, "error", lerr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// requestBody renders a request as sections for `adaptiq llm view`.
func requestBody(req Request) string {
	var sections []string
	if req.System != "" {
		sections = append(sections, "[system]\n"+req.System)
	}
	sections = append(sections, "[prompt]\n"+req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			sections = append(sections, "[schema: "+req.Schema.Name+"]\n"+string(def))
		}
	}
	return strings.Join(sections, "\n\n") + "\n"
}
