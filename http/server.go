// server/http/server.go
package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/folio-server/auth"
	"github.com/ViniZap4/folio-server/domain"
	"github.com/ViniZap4/folio-server/filesystem"
	"github.com/ViniZap4/folio-server/portfolio"
	"github.com/ViniZap4/folio-server/social"
)

type Server struct {
	portfolio *portfolio.Service
	posts     *filesystem.PostStore
	social    *social.Service
	issuer    *auth.Issuer
	adminHash string
}

// NewServer wires the handlers. social may be nil, in which case the
// account and interaction routes are not mounted.
func NewServer(p *portfolio.Service, posts *filesystem.PostStore, s *social.Service, issuer *auth.Issuer, adminHash string) *Server {
	return &Server{portfolio: p, posts: posts, social: s, issuer: issuer, adminHash: adminHash}
}

// App builds the fiber application with every route mounted.
func (s *Server) App(allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "folio-server",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		BodyLimit:             8 << 20,
	})

	app.Use(recover.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	api := app.Group("/api")
	admin := api.Group("/admin", s.issuer.RequireAdmin())

	api.Get("/portfolio/:collection", s.listPortfolio)
	admin.Get("/portfolio/:collection", s.listPortfolio)
	admin.Put("/portfolio/:collection", s.replacePortfolio)
	admin.Post("/portfolio/:collection", s.createPortfolioItem)
	admin.Put("/portfolio/:collection/:id", s.updatePortfolioItem)
	admin.Delete("/portfolio/:collection/:id", s.deletePortfolioItem)

	api.Get("/blog/posts", s.listPosts)
	api.Get("/blog/posts/:slug", s.getPost)
	admin.Post("/blog/posts", s.createPost)
	admin.Put("/blog/posts/:slug", s.updatePost)
	admin.Delete("/blog/posts/:slug", s.deletePost)

	api.Post("/auth/admin", s.adminLogin)

	if s.social != nil {
		s.mountSocial(api)
	}

	return app
}

func (s *Server) mountSocial(api fiber.Router) {
	user := s.issuer.RequireUser()
	optional := s.issuer.OptionalUser()

	api.Post("/auth/register", s.register)
	api.Post("/auth/login", s.login)

	api.Get("/blog/posts/:slug/comments", s.listComments)
	api.Post("/blog/posts/:slug/comments", optional, s.addComment)
	api.Put("/blog/posts/:slug/comments/:id", user, s.editComment)
	api.Delete("/blog/posts/:slug/comments/:id", user, s.removeComment)

	api.Post("/blog/posts/:slug/likes", user, s.toggleLike)
	api.Get("/blog/posts/:slug/likes/count", s.likeCount)
	api.Get("/blog/posts/:slug/likes/user", optional, s.likeStatus)

	api.Post("/blog/topics/:topic/follow", user, s.toggleFollow)
	api.Get("/blog/topics/:topic/follow/status", optional, s.followStatus)

	api.Get("/profile/likes", user, s.profileLikes)
	api.Get("/profile/topics", user, s.profileTopics)
}

// ErrorHandler renders every handler error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	msg := domain.Message(err)
	switch domain.KindOf(err) {
	case domain.KindStorage:
		log.Error().Err(err).Str("path", c.Path()).Msg("storage failure")
	case 0:
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		msg = "Something went wrong"
	}
	return c.Status(statusOf(err)).JSON(fiber.Map{"error": msg})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler runs after this middleware returns.
			status = statusOf(err)
		}
		level := zerolog.InfoLevel
		if status >= fiber.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		log.WithLevel(level).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// bind parses a JSON body, reporting malformed input as a validation error.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("Invalid request body")
	}
	return nil
}
