package questions

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a tutor writing quiz questions for an adaptive learning app.

Rules:
- Generate a single question about the given subject at the given difficulty level (1-10).
- If difficulty is 1-3: focus on basic recall, definitions, and simple concepts.
- If difficulty is 4-6: focus on application and understanding of concepts.
- If difficulty is 7-10: focus on analysis, evaluation, and synthesis of complex concepts.
- Provide exactly 4 options labeled a, b, c and d, where exactly one is correct.
- The explanation must say why the correct option is right.
- The question should be challenging but fair for the given difficulty level.
- Do not repeat any question from the "already asked" list.
- Respond with a single JSON object: {"text", "options": {"a", "b", "c", "d"}, "correct_option", "explanation"}.`

// tierInstruction returns the focus line for a difficulty level.
func tierInstruction(level int) string {
	switch {
	case level <= 3:
		return "basic recall, definitions, and simple concepts"
	case level <= 6:
		return "application and understanding of concepts"
	default:
		return "analysis, evaluation, and synthesis of complex concepts"
	}
}

// buildUserMessage constructs the user message from Input and Config limits.
func buildUserMessage(input Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.Subject)
	fmt.Fprintf(&b, "Difficulty: %d/10\n", input.Difficulty)
	fmt.Fprintf(&b, "Focus: %s\n", tierInstruction(input.Difficulty))
	if input.Mode == ModeFreeRecall {
		b.WriteString("The learner will answer without seeing the options, so the correct option must be a short answer that can be typed.\n")
	}

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Prior questions are newest first; keep the newest N.
	if max > 0 && len(prior) > max {
		prior = prior[:max]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
