package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptiq/internal/store"
)

// NewProvider builds the Gemini backend wrapped as
// caller -> timeout -> retry -> logging -> gemini.
// A nil events repo skips request logging.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gemini, err := NewGeminiProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing gemini: %w", err)
	}
	return decorate(gemini, cfg, events), nil
}

func decorate(p Provider, cfg Config, events store.EventRepo) Provider {
	if events != nil {
		p = WithLogging(p, events)
	}
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout)
}
