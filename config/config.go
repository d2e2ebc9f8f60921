// server/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "folio.jsonc"

var (
	errConfigInvalid  = errors.New("invalid config")
	errConfigFileRead = errors.New("cannot read config file")
)

// Duration accepts Go duration strings in the config file.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Port              string   `json:"port"`
	DataDir           string   `json:"data_dir"`
	PostsDir          string   `json:"posts_dir"`
	DatabaseURL       string   `json:"database_url"`
	AdminPasswordHash string   `json:"admin_password_hash"`
	JWTSecret         string   `json:"jwt_secret"`
	TokenTTL          Duration `json:"token_ttl"`
	AllowOrigins      string   `json:"allow_origins"`
	LogLevel          string   `json:"log_level"`
	LogPretty         bool     `json:"log_pretty"`

	// Set by flags only.
	HashPassword bool `json:"-"`
	// True when no secret was configured and one was generated.
	GeneratedSecret bool `json:"-"`
	// File the config was read from, empty when none.
	File string `json:"-"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		DataDir:      "./data",
		PostsDir:     "./content/blog",
		TokenTTL:     Duration(24 * time.Hour),
		AllowOrigins: "*",
		LogLevel:     "info",
	}
}

// Load layers, lowest first: defaults, the JSONC config file, .env, FOLIO_*
// environment variables, then command-line flags.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("folio-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a JSONC config file")
	port := flags.StringP("port", "p", "", "HTTP listen port")
	dataDir := flags.String("data-dir", "", "directory holding the portfolio JSON documents")
	postsDir := flags.String("posts-dir", "", "directory holding blog posts")
	dbURL := flags.String("database-url", "", "PostgreSQL URL for comments, likes and follows")
	logLevel := flags.String("log-level", "", "log level (debug, info, warn, error)")
	logPretty := flags.Bool("log-pretty", false, "human-readable console logs")
	hashPassword := flags.Bool("hash-password", false, "read a password from stdin, print its bcrypt hash and exit")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	path := *configPath
	mustExist := path != ""
	if path == "" {
		path = os.Getenv("FOLIO_CONFIG")
		mustExist = path != ""
	}
	if path == "" {
		path = DefaultFile
	}
	fileCfg, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, fileCfg)
		cfg.File = path
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if flags.Changed("port") {
		cfg.Port = *port
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = *dataDir
	}
	if flags.Changed("posts-dir") {
		cfg.PostsDir = *postsDir
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = *dbURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if flags.Changed("log-pretty") {
		cfg.LogPretty = *logPretty
	}
	cfg.HashPassword = *hashPassword

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.JWTSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errConfigInvalid, err)
	}
	return cfg, nil
}

func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigFileRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: invalid JSONC: %w", errConfigInvalid, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func merge(base, overlay Config) Config {
	if overlay.Port != "" {
		base.Port = overlay.Port
	}
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}
	if overlay.PostsDir != "" {
		base.PostsDir = overlay.PostsDir
	}
	if overlay.DatabaseURL != "" {
		base.DatabaseURL = overlay.DatabaseURL
	}
	if overlay.AdminPasswordHash != "" {
		base.AdminPasswordHash = overlay.AdminPasswordHash
	}
	if overlay.JWTSecret != "" {
		base.JWTSecret = overlay.JWTSecret
	}
	if overlay.TokenTTL != 0 {
		base.TokenTTL = overlay.TokenTTL
	}
	if overlay.AllowOrigins != "" {
		base.AllowOrigins = overlay.AllowOrigins
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.LogPretty {
		base.LogPretty = true
	}
	return base
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"FOLIO_PORT":                &cfg.Port,
		"FOLIO_DATA_DIR":            &cfg.DataDir,
		"FOLIO_POSTS_DIR":           &cfg.PostsDir,
		"DATABASE_URL":              &cfg.DatabaseURL,
		"FOLIO_DATABASE_URL":        &cfg.DatabaseURL,
		"FOLIO_ADMIN_PASSWORD_HASH": &cfg.AdminPasswordHash,
		"FOLIO_JWT_SECRET":          &cfg.JWTSecret,
		"FOLIO_ALLOW_ORIGINS":       &cfg.AllowOrigins,
		"FOLIO_LOG_LEVEL":           &cfg.LogLevel,
	}
	// FOLIO_DATABASE_URL wins over DATABASE_URL
	for _, name := range []string{
		"FOLIO_PORT", "FOLIO_DATA_DIR", "FOLIO_POSTS_DIR", "DATABASE_URL", "FOLIO_DATABASE_URL",
		"FOLIO_ADMIN_PASSWORD_HASH", "FOLIO_JWT_SECRET", "FOLIO_ALLOW_ORIGINS", "FOLIO_LOG_LEVEL",
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*str[name] = v
		}
	}

	if v := os.Getenv("FOLIO_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: FOLIO_TOKEN_TTL: %w", errConfigInvalid, err)
		}
		cfg.TokenTTL = Duration(d)
	}
	if v := os.Getenv("FOLIO_LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: FOLIO_LOG_PRETTY: %w", errConfigInvalid, err)
		}
		cfg.LogPretty = b
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("port is empty")
	}
	if cfg.DataDir == "" {
		return errors.New("data_dir is empty")
	}
	if cfg.PostsDir == "" {
		return errors.New("posts_dir is empty")
	}
	if cfg.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
