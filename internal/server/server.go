// Package server exposes the learning flow over HTTP.
package server

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/dashboard"
	"github.com/abhisek/adaptiq/internal/learning"
	"github.com/abhisek/adaptiq/internal/llm"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the HTTP settings of a Server.
type Options struct {
	Version        string
	CookieSecure   bool
	AllowedOrigins string
	RateLimit      config.RateLimit

	// LimiterStorage backs the rate limiter. Nil keeps counters in memory.
	LimiterStorage fiber.Storage

	// AccessLog receives one line per request. Nil disables it.
	AccessLog io.Writer
}

// Deps are the services behind the HTTP handlers.
type Deps struct {
	Accounts  *auth.Accounts
	Tokens    *auth.Tokens
	Learning  *learning.Service
	Dashboard *dashboard.Service

	// Provider is nil in mock mode.
	Provider llm.Provider

	DB     Pinger
	Logger *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	app  *fiber.App
	opts Options
	deps Deps
	log  *slog.Logger
}

// New builds the fiber app and registers all routes.
func New(opts Options, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{opts: opts, deps: deps, log: deps.Logger}

	s.app = fiber.New(fiber.Config{
		AppName:               "adaptiq",
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		// LLM calls are bounded by the provider timeout.
		WriteTimeout: 2 * time.Minute,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog != nil {
		s.app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: opts.AccessLog,
		}))
	}
	if opts.AllowedOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowCredentials: true,
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	limit := s.rateLimiter()

	s.app.Get("/", s.handleIndex)
	s.app.Get("/healthz", s.handleHealth)

	authGroup := s.app.Group("/auth", limit)
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Post("/logout", s.handleLogout)
	authGroup.Get("/account", s.requireSession, s.handleAccount)
	authGroup.Get("/preferences", s.requireSession, s.handleGetPreferences)
	authGroup.Post("/preferences", s.requireSession, s.handleSetPreferences)

	api := s.app.Group("/api", s.requireSession, limit)
	api.Post("/toggle-preference", s.handleTogglePreference)
	api.Get("/llm-test", s.handleLLMTest)

	learn := s.app.Group("/learn", s.requireSession, limit)
	learn.Get("/subjects", s.handleListSubjects)
	learn.Post("/create-subject", s.handleCreateSubject)
	learn.Get("/study/:subject_id", s.handleStudy)
	learn.Get("/generate-question/:subject_id", s.handleGenerateQuestion)
	learn.Post("/submit-answer", s.handleSubmitAnswer)
	learn.Post("/interactive-question", s.handleInteractiveQuestion)

	dash := s.app.Group("/dashboard", s.requireSession, limit)
	dash.Get("/stats", s.handleStats)
	dash.Get("/recent-activity", s.handleRecentActivity)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", "addr", addr, "llm", s.deps.Provider != nil)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"name": "adaptiq", "version": s.opts.Version})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(c.UserContext()); err != nil {
			s.log.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
