package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSocialSchemaHasUniqueToggles(t *testing.T) {
	up, err := fs.ReadFile(migrations, "migrations/000001_social.up.sql")
	require.NoError(t, err)

	sql := string(up)
	assert.Contains(t, sql, "UNIQUE (post_slug, user_id)")
	assert.Contains(t, sql, "UNIQUE (topic, user_id)")
	assert.Contains(t, sql, "email         TEXT NOT NULL UNIQUE")
}
