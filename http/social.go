// server/http/social.go
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ViniZap4/folio-server/auth"
	"github.com/ViniZap4/folio-server/domain"
)

type contentRequest struct {
	Content string `json:"content"`
}

// viewer returns the caller set by RequireUser.
func viewer(c *fiber.Ctx) (domain.Viewer, error) {
	v, ok := auth.ViewerFrom(c)
	if !ok {
		return domain.Viewer{}, domain.Unauthorized("Unauthorized")
	}
	return v, nil
}

func commentID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.NotFound("Comment not found")
	}
	return id, nil
}

func (s *Server) listComments(c *fiber.Ctx) error {
	comments, err := s.social.Comments(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(comments)
}

func (s *Server) addComment(c *fiber.Ctx) error {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var author *domain.Viewer
	if v, ok := auth.ViewerFrom(c); ok {
		author = &v
	}
	ip := c.IP()
	if forwarded := c.IPs(); len(forwarded) > 0 {
		ip = forwarded[0]
	}
	comment, err := s.social.AddComment(c.UserContext(), c.Params("slug"), req.Content, author, ip)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) editComment(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := s.social.EditComment(c.UserContext(), c.Params("slug"), id, req.Content, v)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

func (s *Server) removeComment(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}
	if err := s.social.RemoveComment(c.UserContext(), c.Params("slug"), id, v); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

func (s *Server) toggleLike(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	liked, err := s.social.ToggleLike(c.UserContext(), c.Params("slug"), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"liked": liked})
}

func (s *Server) likeCount(c *fiber.Ctx) error {
	n, err := s.social.LikeCount(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}

func (s *Server) likeStatus(c *fiber.Ctx) error {
	v, ok := auth.ViewerFrom(c)
	if !ok {
		return c.JSON(fiber.Map{"liked": false})
	}
	liked, err := s.social.HasLiked(c.UserContext(), c.Params("slug"), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"liked": liked})
}

func (s *Server) toggleFollow(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	following, err := s.social.ToggleFollow(c.UserContext(), c.Params("topic"), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"following": following})
}

func (s *Server) followStatus(c *fiber.Ctx) error {
	v, ok := auth.ViewerFrom(c)
	if !ok {
		return c.JSON(fiber.Map{"following": false})
	}
	following, err := s.social.IsFollowing(c.UserContext(), c.Params("topic"), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"following": following})
}

func (s *Server) profileLikes(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	likes, err := s.social.ProfileLikes(c.UserContext(), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(likes)
}

func (s *Server) profileTopics(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	topics, err := s.social.ProfileTopics(c.UserContext(), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(topics)
}
