package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/adaptiq/internal/llm"
)

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.deps.Dashboard.Stats(c.UserContext(), sessionFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) handleRecentActivity(c *fiber.Ctx) error {
	activity, err := s.deps.Dashboard.RecentActivity(c.UserContext(), sessionFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(activity)
}

const llmTestPrompt = "Respond with 'API connection successful' if you can read this message."

// handleLLMTest sends a one-line prompt to the configured provider.
func (s *Server) handleLLMTest(c *fiber.Ctx) error {
	if s.deps.Provider == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "No LLM API key configured; running in mock mode.",
		})
	}

	ctx := llm.WithPurpose(c.UserContext(), llm.PurposeLLMTest)
	resp, err := s.deps.Provider.Generate(ctx, llm.Request{
		Prompt:    llmTestPrompt,
		MaxTokens: 50,
	})
	if err != nil {
		s.log.Warn("llm test failed", "failure", llm.Classify(err), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
			"kind":    string(llm.Classify(err)),
		})
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": resp.Text(),
		"model":   s.deps.Provider.ModelID(),
	})
}
