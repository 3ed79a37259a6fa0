package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/followup"
	"github.com/abhisek/adaptiq/internal/learning"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/questions"
	"github.com/abhisek/adaptiq/internal/store"
)

// handleError converts handler errors into JSON responses.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, body := s.classify(c, err)
	return c.Status(status).JSON(body)
}

func (s *Server) classify(c *fiber.Ctx, err error) (int, fiber.Map) {
	var (
		fe   *fiber.Error
		verr *auth.ValidationError
		qerr *questions.ValidationError
	)

	switch {
	case errors.As(err, &fe):
		return fe.Code, fiber.Map{"error": fe.Message}
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, fiber.Map{"error": verr.Message, "field": verr.Field}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, fiber.Map{"error": "Login unsuccessful. Please check email and password."}
	case errors.Is(err, auth.ErrInvalidSession):
		return fiber.StatusUnauthorized, fiber.Map{"error": "Please log in to access this page."}
	case errors.Is(err, auth.ErrUnknownPreference):
		return fiber.StatusBadRequest, fiber.Map{"status": "error", "message": "Invalid preference"}
	case errors.Is(err, learning.ErrInteractiveDisabled):
		return fiber.StatusBadRequest, fiber.Map{"error": "Interactive mode is not enabled"}
	case errors.Is(err, learning.ErrSubjectNameRequired):
		return fiber.StatusBadRequest, fiber.Map{"error": "Subject name is required"}
	case errors.Is(err, learning.ErrInvalidResponseTime), errors.Is(err, followup.ErrEmptyQuery):
		return fiber.StatusBadRequest, fiber.Map{"error": err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, fiber.Map{"error": "Not found"}
	}

	kind := llm.Classify(err)
	if errors.As(err, &qerr) {
		kind = llm.FailureMalformed
	}
	s.log.Error("request failed",
		"method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"),
		"failure", kind, "error", err)
	if kind != llm.FailureUnknown {
		return fiber.StatusInternalServerError, fiber.Map{"error": err.Error(), "kind": string(kind)}
	}
	return fiber.StatusInternalServerError, fiber.Map{"error": "Internal server error"}
}
