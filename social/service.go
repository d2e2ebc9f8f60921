// server/social/service.go
package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/folio-server/auth"
	"github.com/ViniZap4/folio-server/domain"
)

const minPasswordLen = 8

// PostLookup resolves a slug to a post. *filesystem.PostStore satisfies it.
type PostLookup interface {
	LoadBySlug(slug string) (*domain.BlogPost, error)
}

type Service struct {
	repo  *Repository
	posts PostLookup
	now   func() time.Time
}

func NewService(repo *Repository, posts PostLookup) *Service {
	return &Service{repo: repo, posts: posts, now: time.Now}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, domain.Invalid("Name, email and password are required")
	}
	if len(password) < minPasswordLen {
		return nil, domain.Invalid("Password must be at least %d characters long", minPasswordLen)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.Storage("Something went wrong", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user", u.ID.String()).Msg("user registered")
	return u, nil
}

// Authenticate returns the user owning email when password matches. Unknown
// emails and wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, domain.Unauthorized("Invalid email or password")
	}
	return u, nil
}

func (s *Service) Comments(ctx context.Context, slug string) ([]domain.Comment, error) {
	return s.repo.ListComments(ctx, slug)
}

// AddComment stores a comment on an existing post. A nil viewer posts
// anonymously and the client address is kept instead of a user id.
func (s *Service) AddComment(ctx context.Context, slug, content string, viewer *domain.Viewer, ip string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalid("Comment content is required")
	}
	if _, err := s.posts.LoadBySlug(slug); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Comment{
		ID:        uuid.New(),
		PostSlug:  slug,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if viewer != nil {
		id := viewer.UserID
		c.UserID = &id
		c.AuthorName = viewer.Name
		c.User = &domain.CommentUser{Name: viewer.Name}
	} else {
		if ip == "" {
			ip = "unknown"
		}
		c.IPAddress = ip
	}

	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) EditComment(ctx context.Context, slug string, id uuid.UUID, content string, viewer domain.Viewer) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalid("Comment content is required")
	}
	c, err := s.ownComment(ctx, slug, id, viewer)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.UpdateComment(ctx, id, content, now); err != nil {
		return nil, err
	}
	c.Content = content
	c.UpdatedAt = now
	return c, nil
}

func (s *Service) RemoveComment(ctx context.Context, slug string, id uuid.UUID, viewer domain.Viewer) error {
	if _, err := s.ownComment(ctx, slug, id, viewer); err != nil {
		return err
	}
	return s.repo.DeleteComment(ctx, id)
}

func (s *Service) ownComment(ctx context.Context, slug string, id uuid.UUID, viewer domain.Viewer) (*domain.Comment, error) {
	c, err := s.repo.CommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.PostSlug != slug {
		return nil, domain.NotFound("Comment not found")
	}
	if c.UserID == nil || *c.UserID != viewer.UserID {
		return nil, domain.Forbidden("Forbidden")
	}
	return c, nil
}

// ToggleLike flips the user's like on slug and reports whether the post is
// now liked.
func (s *Service) ToggleLike(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	removed, err := s.repo.DeleteLike(ctx, slug, userID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := s.posts.LoadBySlug(slug); err != nil {
		return false, err
	}

	l := &domain.Like{ID: uuid.New(), PostSlug: slug, UserID: userID, CreatedAt: s.now().UTC()}
	if err := s.repo.InsertLike(ctx, l); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) LikeCount(ctx context.Context, slug string) (int, error) {
	return s.repo.CountLikes(ctx, slug)
}

func (s *Service) HasLiked(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	return s.repo.HasLike(ctx, slug, userID)
}

// ToggleFollow flips the user's follow of topic and reports whether the
// topic is now followed.
func (s *Service) ToggleFollow(ctx context.Context, topic string, userID uuid.UUID) (bool, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return false, domain.Invalid("Topic is required")
	}
	removed, err := s.repo.DeleteFollow(ctx, topic, userID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}

	f := &domain.TopicFollow{ID: uuid.New(), Topic: topic, UserID: userID, CreatedAt: s.now().UTC()}
	if err := s.repo.InsertFollow(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) IsFollowing(ctx context.Context, topic string, userID uuid.UUID) (bool, error) {
	return s.repo.HasFollow(ctx, strings.TrimSpace(topic), userID)
}

// ProfileLikes returns the user's likes, newest first, each with the title
// of its post. Likes of posts that no longer exist keep a nil Post.
func (s *Service) ProfileLikes(ctx context.Context, userID uuid.UUID) ([]domain.Like, error) {
	likes, err := s.repo.LikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range likes {
		post, err := s.posts.LoadBySlug(likes[i].PostSlug)
		if err != nil {
			log.Debug().Str("slug", likes[i].PostSlug).Msg("liked post is gone")
			continue
		}
		likes[i].Post = &domain.PostTitle{Title: post.Title}
	}
	return likes, nil
}

func (s *Service) ProfileTopics(ctx context.Context, userID uuid.UUID) ([]domain.TopicFollow, error) {
	return s.repo.FollowsByUser(ctx, userID)
}
