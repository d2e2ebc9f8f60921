// server/domain/slug.go
package domain

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugSpaces = regexp.MustCompile(`\s+`)
)

// Slugify derives a post slug from its title. Titles that normalize to the
// same slug collide; callers get no disambiguation.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	return slugSpaces.ReplaceAllString(s, "-")
}

// NextID returns one past the largest id in records, or 1 when empty.
func NextID[R Record](records []R) int {
	next := 1
	for _, r := range records {
		if id := r.RecordID(); id >= next {
			next = id + 1
		}
	}
	return next
}
