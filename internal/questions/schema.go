package questions

import "github.com/abhisek/adaptiq/internal/llm"

// QuestionSchema defines the JSON schema for LLM question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single multiple-choice quiz question with explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The question text",
			},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"a": map[string]any{"type": "string"},
					"b": map[string]any{"type": "string"},
					"c": map[string]any{"type": "string"},
					"d": map[string]any{"type": "string"},
				},
				"required":             []any{"a", "b", "c", "d"},
				"additionalProperties": false,
			},
			"correct_option": map[string]any{
				"type":        "string",
				"enum":        []any{"a", "b", "c", "d", "A", "B", "C", "D"},
				"description": "The correct option letter (a, b, c, or d)",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Detailed explanation of why the answer is correct",
			},
		},
		"required":             []any{"text", "options", "correct_option", "explanation"},
		"additionalProperties": false,
	},
}
