// server/http/auth.go
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/folio-server/auth"
	"github.com/ViniZap4/folio-server/domain"
)

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user,omitempty"`
}

func (s *Server) adminLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	token, exp, err := s.issuer.AdminLogin(s.adminHash, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{Token: token, ExpiresAt: exp})
}

func (s *Server) register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := s.social.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := s.social.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	token, exp, err := s.issuer.Issue(u.ID.String(), u.Name, auth.RoleUser)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{Token: token, ExpiresAt: exp, User: u})
}
