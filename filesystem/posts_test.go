package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/folio-server/domain"
)

func newTestPostStore(t *testing.T) (*PostStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewPostStore(NewDirStorage(dir))
	store.now = func() time.Time { return time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC) }
	return store, dir
}

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListSlugs(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "alpha.md", "a")
	writePost(t, dir, "beta.mdx", "b")
	writePost(t, dir, "alpha.mdx", "a")
	writePost(t, dir, "notes.txt", "x")

	slugs, err := store.ListSlugs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, slugs)
}

func TestListSlugsMissingDirectory(t *testing.T) {
	store := NewPostStore(NewDirStorage(filepath.Join(t.TempDir(), "absent")))

	slugs, err := store.ListSlugs()
	require.NoError(t, err)
	assert.Empty(t, slugs)

	posts, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadAllSortsByDateDescending(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "first.md", "---\ntitle: First\ndate: 2024-01-01\n---\none")
	writePost(t, dir, "third.md", "---\ntitle: Third\ndate: 2024-03-01\n---\nthree")
	writePost(t, dir, "second.mdx", "---\ntitle: Second\ndate: 2024-02-01\n---\ntwo")
	writePost(t, dir, "broken.md", "---\ntitle: never closed\n")

	posts, err := store.LoadAll()
	require.NoError(t, err)

	var dates []string
	for _, p := range posts {
		dates = append(dates, p.Date)
	}
	assert.Equal(t, []string{"2024-03-01", "2024-02-01", "2024-01-01"}, dates)
}

func TestLoadBySlug(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "hello.md", "---\ntitle: Hello\ndate: 2024-01-01\nimage: /h.png\n---\nHi there")

	post, err := store.LoadBySlug("hello")
	require.NoError(t, err)
	assert.Equal(t, &domain.BlogPost{
		Slug:    "hello",
		Title:   "Hello",
		Date:    "2024-01-01",
		Tags:    []string{},
		Image:   "/h.png",
		Content: "Hi there",
	}, post)
}

func TestLoadBySlugFallsBackToMDX(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "deep.md", "---\ntitle: [broken\n---\n")
	writePost(t, dir, "deep.mdx", "---\ntitle: Deep\n---\n<Component />")

	post, err := store.LoadBySlug("deep")
	require.NoError(t, err)
	assert.Equal(t, "Deep", post.Title)
	assert.Equal(t, "<Component />", post.Content)
}

func TestLoadBySlugNotFound(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "other.md", "---\ntitle: Other\n---\n")

	for _, slug := range []string{"missing-post", "../other", ""} {
		post, err := store.LoadBySlug(slug)
		assert.Nil(t, post)
		assert.True(t, errors.Is(err, domain.ErrNotFound), slug)
	}
}

func TestCreate(t *testing.T) {
	store, dir := newTestPostStore(t)

	slug, err := store.Create(domain.PostFields{
		Title:   "Hello, World! Foo_Bar",
		Content: "# Hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-foobar", slug)
	assert.FileExists(t, filepath.Join(dir, "hello-world-foobar.md"))

	post, err := store.LoadBySlug(slug)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World! Foo_Bar", post.Title)
	assert.Equal(t, "2025-05-04T03:02:01.000Z", post.Date)
	assert.Equal(t, "", post.Description)
	assert.Equal(t, []string{}, post.Tags)
	assert.Equal(t, "# Hi", post.Content)
}

func TestCreateUsesExplicitSlug(t *testing.T) {
	store, _ := newTestPostStore(t)

	slug, err := store.Create(domain.PostFields{Slug: "My Custom Slug", Title: "Whatever", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "my-custom-slug", slug)
}

func TestCreateValidation(t *testing.T) {
	store, dir := newTestPostStore(t)

	for _, fields := range []domain.PostFields{
		{Title: "", Content: "body"},
		{Title: "title", Content: ""},
		{Title: "!!!", Content: "body"},
	} {
		_, err := store.Create(fields)
		assert.True(t, errors.Is(err, domain.ErrValidation), "%+v", fields)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateOverwritesSameSlug(t *testing.T) {
	store, _ := newTestPostStore(t)

	_, err := store.Create(domain.PostFields{Title: "Hello World", Content: "first"})
	require.NoError(t, err)
	_, err = store.Create(domain.PostFields{Title: "hello, world!", Content: "second"})
	require.NoError(t, err)

	post, err := store.LoadBySlug("hello-world")
	require.NoError(t, err)
	assert.Equal(t, "second", post.Content)
}

func TestUpdateKeepsMDXExtension(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "fancy.mdx", "---\ntitle: Fancy\ndate: 2024-01-01\nseries: old\n---\nold body")

	err := store.Update("fancy", domain.PostFields{
		Title:   "Fancier",
		Content: "new body",
		Date:    "2024-01-01",
		Tags:    []string{"mdx"},
	})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "fancy.md"))
	post, err := store.LoadBySlug("fancy")
	require.NoError(t, err)
	assert.Equal(t, "Fancier", post.Title)
	assert.Equal(t, "new body", post.Content)
	assert.Equal(t, []string{"mdx"}, post.Tags)
	assert.Empty(t, post.Extra, "update replaces front matter wholesale")
}

func TestUpdateMissingPost(t *testing.T) {
	store, dir := newTestPostStore(t)

	err := store.Update("ghost", domain.PostFields{Title: "t", Content: "c"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoFileExists(t, filepath.Join(dir, "ghost.md"))

	err = store.Update("ghost", domain.PostFields{Title: "t"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDelete(t *testing.T) {
	store, dir := newTestPostStore(t)
	writePost(t, dir, "twin.md", "a")
	writePost(t, dir, "twin.mdx", "b")

	require.NoError(t, store.Delete("twin"))
	assert.NoFileExists(t, filepath.Join(dir, "twin.md"))
	assert.NoFileExists(t, filepath.Join(dir, "twin.mdx"))

	err := store.Delete("twin")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
