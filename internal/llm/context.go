package llm

import "context"

// Purpose labels why a model call was made. It is stored on every
// llm_request_events row and grouped by `adaptiq llm stats`.
type Purpose string

const (
	PurposeQuestion Purpose = "question-gen"
	PurposeGrade    Purpose = "answer-eval"
	PurposeFollowUp Purpose = "followup"
	PurposeLLMTest  Purpose = "llm-test"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx so the logging decorator can attribute the call.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the tag set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
