// server/domain/social.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Comment on a post. Anonymous comments carry the client address instead
// of a user id.
type Comment struct {
	ID         uuid.UUID    `json:"id"`
	PostSlug   string       `json:"postSlug"`
	Content    string       `json:"content"`
	UserID     *uuid.UUID   `json:"userId,omitempty"`
	AuthorName string       `json:"authorName,omitempty"`
	IPAddress  string       `json:"-"`
	User       *CommentUser `json:"user,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type CommentUser struct {
	Name string `json:"name"`
}

type Like struct {
	ID        uuid.UUID  `json:"id"`
	PostSlug  string     `json:"postSlug"`
	UserID    uuid.UUID  `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	Post      *PostTitle `json:"post,omitempty"`
}

type PostTitle struct {
	Title string `json:"title"`
}

type TopicFollow struct {
	ID        uuid.UUID `json:"id"`
	Topic     string    `json:"topic"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Viewer identifies the authenticated caller of a request.
type Viewer struct {
	UserID uuid.UUID
	Name   string
	Admin  bool
}
