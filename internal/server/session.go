package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/store"
)

const sessionKey = "session"

// requireSession resolves the session cookie into an auth.Session stored
// in Locals, or rejects the request with 401.
func (s *Server) requireSession(c *fiber.Ctx) error {
	claims, err := s.deps.Tokens.Parse(c.Cookies(auth.CookieName))
	if err != nil {
		return err
	}
	sess, err := s.deps.Accounts.Resolve(c.UserContext(), claims)
	if err != nil {
		return err
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

// sessionFrom returns the session set by requireSession, or nil.
func sessionFrom(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(sessionKey).(*auth.Session)
	return sess
}

func (s *Server) setSessionCookie(c *fiber.Ctx, u *store.User, remember bool) error {
	token, exp, err := s.deps.Tokens.Issue(u.ID, u.Username, remember)
	if err != nil {
		return err
	}
	cookie := &fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if remember {
		cookie.Expires = exp
	}
	c.Cookie(cookie)
	return nil
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
