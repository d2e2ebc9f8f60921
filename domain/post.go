// server/domain/post.go
package domain

// BlogPost is a Markdown document plus its front matter.
type BlogPost struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Date        string         `json:"date"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Image       string         `json:"image,omitempty"`
	Content     string         `json:"content"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// PostFields is the admin payload for creating or rewriting a post.
// Zero values fall back to the front matter defaults.
type PostFields struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
}
