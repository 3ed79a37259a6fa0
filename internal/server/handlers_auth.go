package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/store"
)

type userResponse struct {
	ID          int64             `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	LastLogin   *time.Time        `json:"last_login,omitempty"`
	Preferences store.Preferences `json:"preferences"`
}

func newUserResponse(u *store.User) userResponse {
	r := userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Preferences: u.Preferences}
	if !u.CreatedAt.IsZero() {
		r.CreatedAt = &u.CreatedAt
	}
	if !u.LastLogin.IsZero() {
		r.LastLogin = &u.LastLogin
	}
	return r
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var in auth.Registration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	u, err := s.deps.Accounts.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your account has been created! You can now log in.",
		"user":    newUserResponse(u),
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	u, err := s.deps.Accounts.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	if err := s.setSessionCookie(c, u, in.Remember); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": newUserResponse(u)})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "You have been logged out."})
}

func (s *Server) handleAccount(c *fiber.Ctx) error {
	u, err := s.deps.Accounts.Profile(c.UserContext(), sessionFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(u))
}

func (s *Server) handleGetPreferences(c *fiber.Ctx) error {
	return c.JSON(sessionFrom(c).Preferences)
}

type preferencesRequest struct {
	DisplayExplanations bool   `json:"display_explanations" form:"display_explanations"`
	QuestionMode        string `json:"question_mode" form:"question_mode"`
	InteractiveMode     bool   `json:"interactive_mode" form:"interactive_mode"`
}

// handleSetPreferences replaces all preferences. Omitted booleans are
// false, like unchecked form checkboxes.
func (s *Server) handleSetPreferences(c *fiber.Ctx) error {
	var in preferencesRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	sess := sessionFrom(c)
	prefs := store.Preferences{
		DisplayExplanations: in.DisplayExplanations,
		QuestionMode:        store.QuestionMode(in.QuestionMode),
		InteractiveMode:     in.InteractiveMode,
	}
	if err := s.deps.Accounts.UpdatePreferences(c.UserContext(), sess, prefs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Your preferences have been updated!", "preferences": sess.Preferences})
}

type toggleRequest struct {
	Preference string `json:"preference"`
	Value      any    `json:"value"`
}

func (s *Server) handleTogglePreference(c *fiber.Ctx) error {
	var in toggleRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.deps.Accounts.TogglePreference(c.UserContext(), sessionFrom(c), in.Preference, in.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Preference updated"})
}
