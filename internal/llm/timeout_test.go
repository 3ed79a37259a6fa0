package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingProvider waits for the context to end before failing.
type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestWithTimeout_Expires(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 5*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	var to *ErrTimeout
	require.True(t, errors.As(err, &to), "expected ErrTimeout, got %T", err)
	assert.Equal(t, FailureTimeout, Classify(err))
	assert.Equal(t, "blocking", p.ModelID())
}

func TestWithTimeout_PassesThroughSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithTimeout(mock, time.Second)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
}

func TestWithTimeout_ZeroDisables(t *testing.T) {
	mock := NewMockProvider()
	assert.Same(t, mock, WithTimeout(mock, 0))
}

func TestWithTimeout_NonTimeoutErrorUnchanged(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithTimeout(mock, time.Second)

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl))
}
