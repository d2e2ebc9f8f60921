// server/filesystem/posts.go
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/folio-server/domain"
)

const (
	extMD  = ".md"
	extMDX = ".mdx"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// PostStore keeps one Markdown file per blog post, named after its slug.
type PostStore struct {
	storage Storage
	locks   *KeyedMutex
	now     func() time.Time
}

func NewPostStore(storage Storage) *PostStore {
	return &PostStore{storage: storage, locks: NewKeyedMutex(), now: time.Now}
}

// ListSlugs returns the slug of every .md or .mdx file. A slug present
// under both extensions is listed once.
func (p *PostStore) ListSlugs() ([]string, error) {
	keys, err := p.storage.List()
	if err != nil {
		log.Error().Err(err).Msg("failed to list posts")
		return nil, domain.Storage("failed to list posts", err)
	}

	slugs := []string{}
	seen := make(map[string]bool)
	for _, key := range keys {
		slug, ok := slugOf(key)
		if !ok || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

// LoadAll returns every readable post, newest first. Dates compare as
// strings.
func (p *PostStore) LoadAll() ([]*domain.BlogPost, error) {
	slugs, err := p.ListSlugs()
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.BlogPost, 0, len(slugs))
	for _, slug := range slugs {
		post, err := p.LoadBySlug(slug)
		if err != nil {
			log.Warn().Str("slug", slug).Msg("skipping unreadable post")
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
	return posts, nil
}

// LoadBySlug reads <slug>.md, falling back to <slug>.mdx on any failure.
func (p *PostStore) LoadBySlug(slug string) (*domain.BlogPost, error) {
	if !validSlug(slug) {
		return nil, domain.NotFound("Post not found")
	}

	post, err := p.read(slug, extMD)
	if err == nil {
		return post, nil
	}
	post, mdxErr := p.read(slug, extMDX)
	if mdxErr == nil {
		return post, nil
	}

	if !errors.Is(err, fs.ErrNotExist) || !errors.Is(mdxErr, fs.ErrNotExist) {
		log.Debug().Str("slug", slug).AnErr("md", err).AnErr("mdx", mdxErr).Msg("post unreadable")
	}
	return nil, domain.NotFound("Post not found")
}

func (p *PostStore) read(slug, ext string) (*domain.BlogPost, error) {
	data, err := p.storage.Read(slug + ext)
	if err != nil {
		return nil, err
	}
	fm, body, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", slug, ext, err)
	}

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.BlogPost{
		Slug:        slug,
		Title:       fm.Title,
		Date:        fm.Date,
		Description: fm.Description,
		Tags:        tags,
		Image:       fm.Image,
		Content:     body,
		Extra:       fm.Extra,
	}, nil
}

// Create writes a new <slug>.md and returns the slug. The slug comes from
// fields.Slug when given, otherwise from the title. An existing post with
// the same slug is overwritten.
func (p *PostStore) Create(fields domain.PostFields) (string, error) {
	if fields.Title == "" || fields.Content == "" {
		return "", domain.Invalid("Title and content are required")
	}

	source := fields.Slug
	if source == "" {
		source = fields.Title
	}
	slug := domain.Slugify(source)
	if !validSlug(slug) {
		return "", domain.Invalid("Title must contain at least one letter or digit")
	}

	unlock := p.locks.Lock(slug)
	defer unlock()

	if err := p.write(slug+extMD, fields); err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to create blog post")
		return "", domain.Storage("Failed to create blog post", err)
	}
	return slug, nil
}

// Update rewrites the front matter and body of an existing post in place,
// keeping its extension. Front matter keys absent from fields are dropped.
func (p *PostStore) Update(slug string, fields domain.PostFields) error {
	if !validSlug(slug) {
		return domain.Invalid("Invalid slug")
	}
	if fields.Title == "" || fields.Content == "" {
		return domain.Invalid("Title and content are required")
	}

	unlock := p.locks.Lock(slug)
	defer unlock()

	key, err := p.existing(slug)
	if err != nil {
		return err
	}
	if err := p.write(key, fields); err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to update blog post")
		return domain.Storage("Failed to update blog post", err)
	}
	return nil
}

// Delete removes the post under every extension it exists as.
func (p *PostStore) Delete(slug string) error {
	if !validSlug(slug) {
		return domain.NotFound("Post not found")
	}

	unlock := p.locks.Lock(slug)
	defer unlock()

	removed := false
	for _, ext := range []string{extMD, extMDX} {
		ok, err := p.storage.Exists(slug + ext)
		if err != nil {
			log.Error().Err(err).Str("slug", slug).Msg("failed to delete blog post")
			return domain.Storage("Failed to delete blog post", err)
		}
		if !ok {
			continue
		}
		if err := p.storage.Remove(slug + ext); err != nil {
			log.Error().Err(err).Str("slug", slug).Msg("failed to delete blog post")
			return domain.Storage("Failed to delete blog post", err)
		}
		removed = true
	}

	if !removed {
		return domain.NotFound("Post not found")
	}
	return nil
}

// existing returns the key slug is stored under, preferring .md.
func (p *PostStore) existing(slug string) (string, error) {
	for _, ext := range []string{extMD, extMDX} {
		ok, err := p.storage.Exists(slug + ext)
		if err != nil {
			log.Error().Err(err).Str("slug", slug).Msg("failed to stat blog post")
			return "", domain.Storage("Failed to update blog post", err)
		}
		if ok {
			return slug + ext, nil
		}
	}
	return "", domain.NotFound("Post not found")
}

func (p *PostStore) write(key string, fields domain.PostFields) error {
	date := fields.Date
	if date == "" {
		date = p.now().UTC().Format(isoMillis)
	}
	tags := fields.Tags
	if tags == nil {
		tags = []string{}
	}

	data, err := RenderDocument(FrontMatter{
		Title:       fields.Title,
		Date:        date,
		Description: fields.Description,
		Tags:        tags,
		Image:       fields.Image,
	}, fields.Content)
	if err != nil {
		return err
	}
	return p.storage.WriteAtomic(key, data)
}

func slugOf(key string) (string, bool) {
	for _, ext := range []string{extMDX, extMD} {
		if slug, ok := strings.CutSuffix(key, ext); ok && slug != "" {
			return slug, true
		}
	}
	return "", false
}

func validSlug(slug string) bool {
	return ValidKey(slug + extMD)
}
