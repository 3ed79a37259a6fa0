package questions

// Config controls the behavior of the LLMSource.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of prior questions listed
	// in the prompt. A repeated question is still accepted.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators:        []Validator{&StructuralValidator{}},
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
	}
}
