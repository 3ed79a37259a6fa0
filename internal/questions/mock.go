package questions

import (
	"context"
	"fmt"
)

// MockSource returns a fixed templated question. It is used when no LLM
// credential is configured.
type MockSource struct{}

// Generate never fails.
func (MockSource) Generate(_ context.Context, input Input) (*Question, error) {
	opts := Options{
		A: "First option",
		B: "Second option",
		C: "Third option",
		D: "Fourth option (correct)",
	}
	return &Question{
		Text:          fmt.Sprintf("This is a sample question about %s at difficulty level %d.", input.Subject, input.Difficulty),
		Options:       opts,
		CorrectOption: "d",
		Answer:        opts.D,
		Explanation:   "This is a sample explanation for the correct answer.",
		Difficulty:    input.Difficulty,
	}, nil
}
