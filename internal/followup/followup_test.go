package followup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/llm"
)

func TestMock(t *testing.T) {
	got, err := Mock{}.Respond(context.Background(), "What is 2+2?", "why four?")
	require.NoError(t, err)
	assert.Equal(t, "This is a sample explanation for 'why four?' related to the current question.", got)

	_, err = Mock{}.Respond(context.Background(), "q", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestLLM_Respond(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("  Because 2 and 2 make 4.\n"))
	r := NewLLM(mock)

	got, err := r.Respond(context.Background(), "What is 2+2?", "why four?")
	require.NoError(t, err)
	assert.Equal(t, "Because 2 and 2 make 4.", got)

	require.Equal(t, 1, mock.CallCount())
	msg := mock.Calls[0].Prompt
	assert.Contains(t, msg, "Original question: What is 2+2?")
	assert.Contains(t, msg, "User follow-up query: why four?")
}

func TestLLM_Errors(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
		llm.TextResponse("   "),
	)
	r := NewLLM(mock)

	_, err := r.Respond(context.Background(), "q", "why?")
	assert.Equal(t, llm.FailureTransport, llm.Classify(err))

	_, err = r.Respond(context.Background(), "q", "why?")
	assert.Equal(t, llm.FailureMalformed, llm.Classify(err))

	_, err = r.Respond(context.Background(), "q", "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 2, mock.CallCount())
}
