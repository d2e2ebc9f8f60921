// server/http/posts.go
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/folio-server/domain"
)

func (s *Server) listPosts(c *fiber.Ctx) error {
	posts, err := s.posts.LoadAll()
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

func (s *Server) getPost(c *fiber.Ctx) error {
	post, err := s.posts.LoadBySlug(c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func (s *Server) createPost(c *fiber.Ctx) error {
	var fields domain.PostFields
	if err := bind(c, &fields); err != nil {
		return err
	}
	slug, err := s.posts.Create(fields)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "slug": slug})
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	var fields domain.PostFields
	if err := bind(c, &fields); err != nil {
		return err
	}
	if err := s.posts.Update(slug, fields); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "slug": slug})
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if err := s.posts.Delete(slug); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "slug": slug})
}
