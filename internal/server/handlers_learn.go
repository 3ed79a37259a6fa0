package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/adaptiq/internal/learning"
)

func subjectID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("subject_id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Subject not found")
	}
	return int64(id), nil
}

func (s *Server) handleListSubjects(c *fiber.Ctx) error {
	subjects, err := s.deps.Learning.ListSubjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subjects": subjects})
}

type createSubjectRequest struct {
	Name        string `json:"subject_name" form:"subject_name"`
	Description string `json:"subject_description" form:"subject_description"`
}

func (s *Server) handleCreateSubject(c *fiber.Ctx) error {
	var in createSubjectRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	sub, created, err := s.deps.Learning.CreateSubject(c.UserContext(), in.Name, in.Description)
	if err != nil {
		return err
	}
	if !created {
		return c.JSON(fiber.Map{"subject": sub, "created": false})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subject": sub, "created": true})
}

func (s *Server) handleStudy(c *fiber.Ctx) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	sub, err := s.deps.Learning.Subject(c.UserContext(), id)
	if err != nil {
		return err
	}
	sess := sessionFrom(c)
	return c.JSON(fiber.Map{"subject": sub, "preferences": sess.Preferences})
}

func (s *Server) handleGenerateQuestion(c *fiber.Ctx) error {
	id, err := subjectID(c)
	if err != nil {
		return err
	}
	q, err := s.deps.Learning.GenerateQuestion(c.UserContext(), sessionFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(q)
}

type submitRequest struct {
	QuestionID   *int64   `json:"question_id"`
	UserResponse *string  `json:"user_response"`
	ResponseTime *float64 `json:"response_time"`
}

func (s *Server) handleSubmitAnswer(c *fiber.Ctx) error {
	var in submitRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if in.QuestionID == nil || in.UserResponse == nil {
		return fiber.NewError(fiber.StatusBadRequest, "question_id and user_response are required")
	}
	sub := learning.Submission{QuestionID: *in.QuestionID, UserResponse: *in.UserResponse}
	if in.ResponseTime != nil {
		sub.ResponseTime = *in.ResponseTime
	}
	res, err := s.deps.Learning.SubmitAnswer(c.UserContext(), sessionFrom(c), sub)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

type followUpRequest struct {
	QuestionID int64  `json:"question_id"`
	Query      string `json:"user_query"`
}

func (s *Server) handleInteractiveQuestion(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	if !sess.Preferences.InteractiveMode {
		return learning.ErrInteractiveDisabled
	}
	var in followUpRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	reply, err := s.deps.Learning.FollowUp(c.UserContext(), sess, in.QuestionID, in.Query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"response": reply})
}
