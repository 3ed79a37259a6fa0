package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider re-sends a request after transport and rate-limit failures
// with exponential backoff. Malformed output, timeouts and unknown errors are
// returned on the first occurrence.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry returns p unchanged when cfg allows a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil || attempt >= r.cfg.MaxAttempts || !retryable(ctx, err) {
			return resp, err
		}

		t := time.NewTimer(r.wait(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch Classify(err) {
	case FailureTransport, FailureRateLimit:
		return true
	}
	return false
}

// wait honours a server-sent RetryAfter, otherwise grows from InitialWait by
// Multiplier per attempt, capped at MaxWait, with ±20% jitter.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt-1))
	if limit := float64(r.cfg.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	return time.Duration(d * (0.8 + 0.4*rand.Float64()))
}
