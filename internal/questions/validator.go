package questions

import (
	"fmt"
	"strings"
)

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *Question, input Input) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ Input) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	switch {
	case strings.TrimSpace(q.Text) == "":
		return fail("text is empty")
	case len(q.Text) > 1000:
		return fail("text exceeds 1000 characters")
	case strings.TrimSpace(q.Explanation) == "":
		return fail("explanation is empty")
	case len(q.Explanation) > 4000:
		return fail("explanation exceeds 4000 characters")
	case q.Difficulty < 1 || q.Difficulty > 10:
		return fail("difficulty must be between 1 and 10")
	}

	for _, l := range Letters {
		if strings.TrimSpace(q.Options.Get(l)) == "" {
			return fail(fmt.Sprintf("option %q is empty", l))
		}
	}
	if q.Options.Get(q.CorrectOption) == "" {
		return fail("correct_option must be one of a, b, c, d")
	}
	return nil
}
