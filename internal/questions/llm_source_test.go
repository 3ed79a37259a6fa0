package questions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/llm"
)

const validQuestionJSON = `{
	"text": "Which keyword defines a function in Python?",
	"options": {"a": "func", "b": "def", "c": "lambda", "d": "fn"},
	"correct_option": "B",
	"explanation": "Functions are defined with the def keyword."
}`

func TestGenerate_ParsesQuestion(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(validQuestionJSON))
	src := New(mock, DefaultConfig())

	q, err := src.Generate(context.Background(), Input{Subject: "Python", Difficulty: 2, Mode: ModeMultipleChoice})
	require.NoError(t, err)

	assert.Equal(t, "Which keyword defines a function in Python?", q.Text)
	assert.Equal(t, "b", q.CorrectOption)
	assert.Equal(t, "def", q.Answer)
	assert.Equal(t, "lambda", q.Options.C)
	assert.Equal(t, 2, q.Difficulty)
	assert.NotEmpty(t, q.Explanation)
}

func TestGenerate_StripsCodeFence(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("Here you go:\n```json\n" + validQuestionJSON + "\n```"))
	src := New(mock, DefaultConfig())

	q, err := src.Generate(context.Background(), Input{Subject: "Python", Difficulty: 1})
	require.NoError(t, err)
	assert.Equal(t, "b", q.CorrectOption)
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(validQuestionJSON))
	src := New(mock, DefaultConfig())

	_, err := src.Generate(context.Background(), Input{
		Subject:        "Python",
		Difficulty:     7,
		Mode:           ModeFreeRecall,
		PriorQuestions: []string{"What is a list?"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls[0]
	assert.Equal(t, QuestionSchema, req.Schema)
	assert.Equal(t, systemPrompt, req.System)
	assert.Equal(t, llm.PurposeQuestion, req.Purpose)

	msg := req.Prompt
	assert.Contains(t, msg, "Subject: Python")
	assert.Contains(t, msg, "Difficulty: 7/10")
	assert.Contains(t, msg, "analysis, evaluation, and synthesis")
	assert.Contains(t, msg, "1. What is a list?")
	assert.Contains(t, msg, "without seeing the options")
}

func TestGenerate_ProviderErrorIsReturned(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}})
	src := New(mock, DefaultConfig())

	_, err := src.Generate(context.Background(), Input{Subject: "Python", Difficulty: 1})
	require.Error(t, err)
	assert.Equal(t, llm.FailureTransport, llm.Classify(err))
	assert.Equal(t, 1, mock.CallCount(), "generation must not retry")
}

func TestGenerate_MalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("I cannot help with that."))
	src := New(mock, DefaultConfig())

	_, err := src.Generate(context.Background(), Input{Subject: "Python", Difficulty: 1})
	require.Error(t, err)
	assert.Equal(t, llm.FailureMalformed, llm.Classify(err))
}

func TestGenerate_ValidationFailure(t *testing.T) {
	bad := strings.Replace(validQuestionJSON, `"B"`, `"e"`, 1)
	mock := llm.NewMockProvider(llm.TextResponse(bad))
	src := New(mock, DefaultConfig())

	_, err := src.Generate(context.Background(), Input{Subject: "Python", Difficulty: 1})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "structural", verr.Validator)
	assert.Equal(t, llm.FailureMalformed, llm.Classify(err))
}

func TestGenerate_RepeatedQuestionAccepted(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(validQuestionJSON))
	src := New(mock, DefaultConfig())

	q, err := src.Generate(context.Background(), Input{
		Subject:        "Python",
		Difficulty:     1,
		PriorQuestions: []string{"Which keyword defines a function in Python?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Which keyword defines a function in Python?", q.Text)
}
