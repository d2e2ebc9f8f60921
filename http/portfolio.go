// server/http/portfolio.go
package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/folio-server/domain"
)

func collectionParam(c *fiber.Ctx) (domain.Collection, error) {
	col, ok := domain.ParseCollection(c.Params("collection"))
	if !ok {
		return "", domain.NotFound("Unknown collection %q", c.Params("collection"))
	}
	return col, nil
}

func idParam(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, domain.Invalid("Invalid id")
	}
	return id, nil
}

func (s *Server) listPortfolio(c *fiber.Ctx) error {
	col, err := collectionParam(c)
	if err != nil {
		return err
	}
	return c.JSON(s.portfolio.List(col))
}

func (s *Server) replacePortfolio(c *fiber.Ctx) error {
	col, err := collectionParam(c)
	if err != nil {
		return err
	}
	if err := s.portfolio.Replace(col, c.Body()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) createPortfolioItem(c *fiber.Ctx) error {
	col, err := collectionParam(c)
	if err != nil {
		return err
	}
	rec, err := s.portfolio.Create(col, c.Body())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) updatePortfolioItem(c *fiber.Ctx) error {
	col, err := collectionParam(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, err := s.portfolio.UpdateItem(col, id, c.Body())
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (s *Server) deletePortfolioItem(c *fiber.Ctx) error {
	col, err := collectionParam(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.portfolio.DeleteItem(col, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
