package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FOLIO_CONFIG", "FOLIO_PORT", "FOLIO_DATA_DIR", "FOLIO_POSTS_DIR", "DATABASE_URL",
		"FOLIO_DATABASE_URL", "FOLIO_ADMIN_PASSWORD_HASH", "FOLIO_JWT_SECRET", "FOLIO_ALLOW_ORIGINS",
		"FOLIO_LOG_LEVEL", "FOLIO_TOKEN_TTL", "FOLIO_LOG_PRETTY",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "./content/blog", cfg.PostsDir)
	assert.Equal(t, Duration(24*time.Hour), cfg.TokenTTL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.JWTSecret, 64)
	assert.Empty(t, cfg.File)
}

func TestLoadLayers(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		// comments and trailing commas are fine
		"port": "9000",
		"data_dir": "/srv/data",
		"posts_dir": "/srv/posts",
		"jwt_secret": "from-file",
		"token_ttl": "2h",
	}`)
	t.Setenv("FOLIO_DATA_DIR", "/env/data")
	t.Setenv("FOLIO_LOG_PRETTY", "true")

	cfg, err := Load([]string{"--config", path, "--posts-dir", "/flag/posts"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "/flag/posts", cfg.PostsDir)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, Duration(2*time.Hour), cfg.TokenTTL)
	assert.True(t, cfg.LogPretty)
}

func TestLoadDatabaseURLPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://generic")
	t.Setenv("FOLIO_DATABASE_URL", "postgres://specific")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://specific", cfg.DatabaseURL)
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.jsonc")})
	assert.True(t, errors.Is(err, errConfigFileRead))
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]struct {
		file string
		env  map[string]string
		args []string
	}{
		"broken jsonc":   {file: `{"port": `},
		"bad duration":   {file: `{"token_ttl": "soon"}`},
		"bad env ttl":    {env: map[string]string{"FOLIO_TOKEN_TTL": "-"}},
		"bad log level":  {args: []string{"--log-level", "loud"}},
		"negative ttl":   {env: map[string]string{"FOLIO_TOKEN_TTL": "-1h"}},
		"bad env pretty": {env: map[string]string{"FOLIO_LOG_PRETTY": "very"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			args := tt.args
			if tt.file != "" {
				args = append(args, "--config", writeConfig(t, tt.file))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(args)
			assert.True(t, errors.Is(err, errConfigInvalid), "%v", err)
		})
	}
}

func TestLoadHashPasswordFlag(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"--hash-password"})
	require.NoError(t, err)
	assert.True(t, cfg.HashPassword)
}
