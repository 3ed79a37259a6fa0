package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply. A non-nil Err is returned instead of
// content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// TextResponse scripts a plain-text model reply.
func TextResponse(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockCall is a request seen by MockProvider together with the purpose
// tagged on its context.
type MockCall struct {
	Request
	Purpose Purpose
}

// MockProvider replays scripted replies in order and records every call.
// Tests use it in place of GeminiProvider.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockResponse
	Calls   []MockCall
}

func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{replies: replies}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Request: req, Purpose: PurposeFrom(ctx)})
	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("mock: no scripted reply left")}
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      m.ModelID(),
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// CallCount is the number of Generate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
