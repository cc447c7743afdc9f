package server

import (
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// loginRequest carries the optional return path next to the credentials.
type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

func (s *Server) setTokenCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) issueSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, err := s.auth.Issue(user.ID, user.Username)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	s.setTokenCookie(c, token, time.Now().Add(s.config.TokenTTL()))
	return token, nil
}

// Signup handles POST /auth/signup/. The new user is logged in right away.
func (s *Server) Signup(c *fiber.Ctx) error {
	var form service.SignupForm
	if err := bindForm(c, &form); err != nil {
		return respondError(c, err)
	}

	user, err := s.accountService.Signup(c.UserContext(), form)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LoginForm handles GET /auth/login/ and echoes the return path.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form": fiber.Map{"username": "", "password": ""},
		"next": c.Query("next"),
	})
}

// Login handles POST /auth/login/. With a local next target in the query or
// body the client is redirected there, otherwise the token is returned.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindForm(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := s.accountService.Authenticate(c.UserContext(), service.LoginForm{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return respondError(c, err)
	}

	next := req.Next
	if next == "" {
		next = c.Query("next")
	}
	if target, ok := safeNext(next); ok {
		return redirect(c, target)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout/. The token stays revoked until it would
// have expired.
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := s.auth.Revoke(c.UserContext(), claims); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", "error", err)
		}
	}
	s.setTokenCookie(c, "", time.Unix(0, 0))
	return c.JSON(fiber.Map{"message": "Logged out"})
}
