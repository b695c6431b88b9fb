package server

import (
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Bio      string `json:"bio" form:"bio"`
}

// pageModel is the JSON model rendered by the form pages.
type pageModel struct {
	Flash    string  `json:"flash"`
	Username *string `json:"username"`
}

func (s *Server) pageModel(c *fiber.Ctx) pageModel {
	page := pageModel{Flash: popFlash(c)}
	if userID, ok := currentUserID(c); ok {
		if user, err := s.identity.GetByID(c.UserContext(), userID); err == nil {
			page.Username = &user.Username
		}
	}
	return page
}

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	return c.JSON(s.pageModel(c))
}

// RegisterPage handles GET /register
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(s.pageModel(c))
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(s.pageModel(c))
}

// Register handles POST /register from a form or JSON body.
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return redirectWithFlash(c, "/register", "Invalid request body")
	}

	user, err := s.identity.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		if isUserFacing(err) {
			return redirectWithFlash(c, "/register", userMessage(err))
		}
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered", "user_id", user.ID)
	return redirectWithFlash(c, "/login", "Registration complete. Please log in.")
}

// Login handles POST /login. On success the session token is set as an
// HTTP-only cookie; API clients may send the same token as a Bearer header.
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return redirectWithFlash(c, "/login", "Invalid request body")
	}

	user, err := s.identity.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if models.IsCode(err, models.CodeUnauthorized) {
			return redirectWithFlash(c, "/login", userMessage(err))
		}
		return respondError(c, err)
	}

	token, expires, err := s.sessions.issue(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, token, expires)

	return redirectWithFlash(c, "/", "Logged in.")
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, ok := c.Locals("sessionClaims").(*jwt.RegisteredClaims); ok {
		if err := s.sessions.revoke(c.UserContext(), claims); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session", "error", err)
		}
	}
	s.clearSessionCookie(c)
	return redirectWithFlash(c, "/", "Logged out.")
}
