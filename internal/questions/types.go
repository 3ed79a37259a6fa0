// Package questions produces quiz questions at a target difficulty, either
// from an LLM provider or from a deterministic mock.
package questions

import (
	"context"
	"strings"
)

// Mode is how the learner will answer the question.
type Mode string

const (
	ModeMultipleChoice Mode = "multiple_choice"
	ModeFreeRecall     Mode = "free_recall"
)

// Letters are the option labels, in display order.
var Letters = []string{"a", "b", "c", "d"}

// Options holds the four labeled choices of a question.
type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Get returns the option for letter (case-insensitive), or "" if the letter
// is not one of a, b, c, d.
func (o Options) Get(letter string) string {
	switch strings.ToLower(strings.TrimSpace(letter)) {
	case "a":
		return o.A
	case "b":
		return o.B
	case "c":
		return o.C
	case "d":
		return o.D
	}
	return ""
}

// Question is a generated question ready to be stored.
type Question struct {
	// Text is the question prompt shown to the learner.
	Text string

	// Options always carries four choices.
	Options Options

	// CorrectOption is the lower-case letter of the correct option.
	CorrectOption string

	// Answer is the canonical answer text used for free recall. It is the
	// text of the correct option.
	Answer string

	// Explanation is shown after the learner answers.
	Explanation string

	// Difficulty is the level the question was generated for (1-10).
	Difficulty int
}

// Input holds all context needed to generate a question.
type Input struct {
	Subject    string
	Difficulty int
	Mode       Mode

	// PriorQuestions contains recent question texts for the subject,
	// newest first. Used for deduplication in the prompt.
	PriorQuestions []string
}

// Source produces questions.
type Source interface {
	// Generate produces a single question for the given input.
	Generate(ctx context.Context, input Input) (*Question, error)
}
