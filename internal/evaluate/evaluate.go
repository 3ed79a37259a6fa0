// Package evaluate judges learner responses.
package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/store"
)

// Method records how a verdict was reached.
type Method string

const (
	MethodExact    Method = "exact"
	MethodSemantic Method = "semantic"

	// MethodFallback is exact matching used after a failed semantic check.
	MethodFallback Method = "exact_fallback"
)

// Verdict is the outcome of evaluating one response.
type Verdict struct {
	Correct bool

	// CorrectAnswer is the option letter in multiple-choice mode and the
	// canonical answer text in free-recall mode.
	CorrectAnswer string

	Method Method

	// FailureKind is set when a semantic check failed and was replaced by
	// exact matching.
	FailureKind llm.FailureKind
}

// Evaluator judges responses. A nil provider disables semantic judgment.
type Evaluator struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New creates an Evaluator. provider may be nil.
func New(provider llm.Provider, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{provider: provider, logger: logger}
}

// Evaluate judges response against q for the given mode. It never fails:
// semantic judgment errors fall back to exact matching.
func (e *Evaluator) Evaluate(ctx context.Context, q *store.Question, response string, mode store.QuestionMode) Verdict {
	if mode == store.ModeMultipleChoice {
		correct := q.CorrectOption
		if correct == "" {
			correct = q.Answer
		}
		return Verdict{
			Correct:       ExactMatch(response, correct),
			CorrectAnswer: correct,
			Method:        MethodExact,
		}
	}

	v := Verdict{CorrectAnswer: q.Answer, Method: MethodExact}
	if e.provider == nil {
		v.Correct = ExactMatch(response, q.Answer)
		return v
	}

	ok, err := e.judge(ctx, q, response)
	if err != nil {
		kind := llm.Classify(err)
		e.logger.Warn("semantic evaluation failed, using exact match",
			"question_id", q.ID, "failure", kind, "error", err)
		v.Correct = ExactMatch(response, q.Answer)
		v.Method = MethodFallback
		v.FailureKind = kind
		return v
	}

	v.Correct = ok
	v.Method = MethodSemantic
	return v
}

const judgePrompt = `Question: %s
Correct answer: %s
User answer: %s

Is the user's answer correct? Consider semantic meaning, not just exact wording.
Respond with only 'Yes' or 'No'.`

// judge asks the model for a yes/no semantic equivalence verdict.
func (e *Evaluator) judge(ctx context.Context, q *store.Question, response string) (bool, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrade)

	resp, err := e.provider.Generate(ctx, llm.Request{
		Prompt:    fmt.Sprintf(judgePrompt, q.Text, q.Answer, response),
		MaxTokens: 16,
	})
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(resp.Text()), "yes"), nil
}

// ExactMatch reports whether response equals want, ignoring case and
// surrounding whitespace.
func ExactMatch(response, want string) bool {
	return strings.EqualFold(strings.TrimSpace(response), strings.TrimSpace(want))
}
