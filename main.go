// server/main.go
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/ViniZap4/folio-server/auth"
	"github.com/ViniZap4/folio-server/config"
	"github.com/ViniZap4/folio-server/database"
	"github.com/ViniZap4/folio-server/filesystem"
	httphandlers "github.com/ViniZap4/folio-server/http"
	"github.com/ViniZap4/folio-server/logging"
	"github.com/ViniZap4/folio-server/portfolio"
	"github.com/ViniZap4/folio-server/schema"
	"github.com/ViniZap4/folio-server/social"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "folio-server: %v\n", err)
		os.Exit(2)
	}

	if cfg.HashPassword {
		if err := printHash(); err != nil {
			fmt.Fprintf(os.Stderr, "folio-server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogPretty); err != nil {
		fmt.Fprintf(os.Stderr, "folio-server: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config) error {
	if err := schema.Check(); err != nil {
		return err
	}
	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("loaded config file")
	}
	if cfg.GeneratedSecret {
		log.Warn().Msg("no JWT secret configured, using a random one; tokens will not survive a restart")
	}
	if cfg.AdminPasswordHash == "" {
		log.Warn().Msg("no admin password hash configured, admin login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records := portfolio.NewService(filesystem.NewRecordStore(filesystem.NewDirStorage(cfg.DataDir)))
	posts := filesystem.NewPostStore(filesystem.NewDirStorage(cfg.PostsDir))
	issuer := auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTL))

	var svc *social.Service
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		svc = social.NewService(social.NewRepository(db), posts)
	} else {
		log.Info().Msg("no database configured, comments, likes and accounts are disabled")
	}

	app := httphandlers.NewServer(records, posts, svc, issuer, cfg.AdminPasswordHash).App(cfg.AllowOrigins)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("data_dir", cfg.DataDir).
			Str("posts_dir", cfg.PostsDir).
			Msg("server starting")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := database.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// printHash reads one line from stdin and prints its bcrypt hash, for use
// as FOLIO_ADMIN_PASSWORD_HASH.
func printHash() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
