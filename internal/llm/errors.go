package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that could not be
// parsed or does not conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrTimeout indicates the request did not complete within the configured
// timeout.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("LLM request timed out after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// FailureKind is a coarse classification of an LLM error, used by callers
// to pick a fallback policy and by the HTTP layer for error payloads.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTimeout   FailureKind = "timeout"
	FailureMalformed FailureKind = "malformed_response"
	FailureTransport FailureKind = "transport"
	FailureRateLimit FailureKind = "rate_limit"
	FailureUnknown   FailureKind = "unknown"
)

// Classify maps an error returned by a Provider to a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var to *ErrTimeout
	if errors.As(err, &to) || errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return FailureMalformed
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return FailureMalformed
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return FailureRateLimit
	}
	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return FailureTransport
	}
	return FailureUnknown
}
