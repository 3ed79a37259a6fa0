package questions

import (
	"strings"
	"testing"
)

func validQuestion() *Question {
	return &Question{
		Text:          "What does HTTP stand for?",
		Options:       Options{A: "HyperText Transfer Protocol", B: "High Transfer Text Protocol", C: "Host Transfer Protocol", D: "None"},
		CorrectOption: "a",
		Answer:        "HyperText Transfer Protocol",
		Explanation:   "HTTP is the HyperText Transfer Protocol.",
		Difficulty:    1,
	}
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
		ok     bool
	}{
		{"valid", func(q *Question) {}, true},
		{"upper-case correct option", func(q *Question) { q.CorrectOption = "A" }, true},
		{"empty text", func(q *Question) { q.Text = "  " }, false},
		{"long text", func(q *Question) { q.Text = strings.Repeat("a", 1001) }, false},
		{"empty explanation", func(q *Question) { q.Explanation = "" }, false},
		{"difficulty too low", func(q *Question) { q.Difficulty = 0 }, false},
		{"difficulty too high", func(q *Question) { q.Difficulty = 11 }, false},
		{"missing option", func(q *Question) { q.Options.C = "" }, false},
		{"bad correct option", func(q *Question) { q.CorrectOption = "e" }, false},
		{"empty correct option", func(q *Question) { q.CorrectOption = "" }, false},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(q)
			err := v.Validate(q, Input{})
			if tt.ok && err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if err.Validator != "structural" {
					t.Errorf("Validator = %q, want structural", err.Validator)
				}
			}
		})
	}
}

func TestOptionsGet(t *testing.T) {
	o := validQuestion().Options
	if got := o.Get(" B "); got != "High Transfer Text Protocol" {
		t.Errorf("Get(B) = %q", got)
	}
	if got := o.Get("z"); got != "" {
		t.Errorf("Get(z) = %q, want empty", got)
	}
}
