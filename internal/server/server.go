// Package server wires the fiber application: route registration and the
// handlers behind each endpoint.
package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/middleware/authware"
	"github.com/monarq/account-api/internal/posts"
	"github.com/monarq/account-api/internal/recovery"
	"github.com/monarq/account-api/internal/register"
	"github.com/monarq/account-api/internal/response"
	"github.com/monarq/account-api/internal/store"
)

// Deps collects everything the server needs. All fields except Logger are
// required.
type Deps struct {
	Auth     *auth.Service
	Register *register.Service
	Recovery *recovery.Service
	Posts    *posts.Service
	Repo     store.Manager
	Logger   auth.Logger
}

// Server owns the fiber app and its handlers.
type Server struct {
	app      *fiber.App
	auth     *auth.Service
	register *register.Service
	recovery *recovery.Service
	posts    *posts.Service
	repo     store.Manager
	logger   auth.Logger
}

// New builds the app and mounts every route.
func New(deps Deps) *Server {
	s := &Server{
		auth:     deps.Auth,
		register: deps.Register,
		recovery: deps.Recovery,
		posts:    deps.Posts,
		repo:     deps.Repo,
		logger:   deps.Logger,
	}
	if s.logger == nil {
		s.logger = auth.NewDefaultLogger("SERVER")
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "account-api",
		ErrorHandler: s.errorHandler,
	})

	s.mount()

	return s
}

// App exposes the underlying fiber app, mainly for tests driving app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) mount() {
	guard := authware.Config{Verifier: s.auth, Logger: s.logger}

	s.app.Get("/", s.handleHealth)

	s.app.Post("/register", s.handleRegister)
	s.app.Post("/authorize", s.handleAuthorize)
	s.app.Post("/authorize/verifyToken", s.handleVerifyToken)

	s.app.Get("/user/:username", authware.RequireUsername(guard), s.handleProfile)

	recoveryGroup := s.app.Group("/recovery")
	recoveryGroup.Post("/forgot-password", s.handleForgotPassword)
	recoveryGroup.Post("/reset-password", s.handleResetPassword)

	s.app.Get("/posts", s.handlePosts)

	adminGroup := s.app.Group("/admin", authware.RequireAdmin(guard))
	adminGroup.Get("/users", s.handleAdminUsers)
}

// errorHandler catches errors that escape handlers, including fiber's own
// routing errors, and reduces them to the uniform envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return response.JSON(c, e.Code, e.Message, nil)
	}

	s.logger.Error("unhandled request error", "path", c.Path(), "error", err)

	return response.Error(c, err)
}
