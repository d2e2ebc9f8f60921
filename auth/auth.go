// server/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ViniZap4/folio-server/domain"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const (
	bcryptCost = 12
	viewerKey  = "viewer"
	adminSub   = "admin"
)

type Claims struct {
	Role Role   `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for subject and its expiry.
func (i *Issuer) Issue(subject, name string, role Role) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses token and checks its signature and expiry.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Role != RoleAdmin && claims.Role != RoleUser {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}

// AdminLogin exchanges the admin password for a token. An empty hash
// disables admin login.
func (i *Issuer) AdminLogin(passwordHash, password string) (string, time.Time, error) {
	if passwordHash == "" {
		return "", time.Time{}, domain.Unauthorized("Admin login is not configured")
	}
	if !CheckPassword(passwordHash, password) {
		return "", time.Time{}, domain.Unauthorized("Invalid password")
	}
	return i.Issue(adminSub, "admin", RoleAdmin)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RequireAdmin rejects requests without a valid admin token.
func (i *Issuer) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := i.fromRequest(c)
		if err != nil || claims == nil {
			return domain.Unauthorized("Unauthorized")
		}
		if claims.Role != RoleAdmin {
			return domain.Forbidden("Forbidden")
		}
		c.Locals(viewerKey, domain.Viewer{Name: claims.Name, Admin: true})
		return c.Next()
	}
}

// RequireUser rejects requests without a valid user token.
func (i *Issuer) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := i.fromRequest(c)
		if err != nil || claims == nil {
			return domain.Unauthorized("Unauthorized")
		}
		viewer, ok := viewerOf(claims)
		if !ok {
			return domain.Forbidden("A user account is required")
		}
		c.Locals(viewerKey, viewer)
		return c.Next()
	}
}

// OptionalUser attaches the viewer when a valid user token is present and
// lets anonymous requests through.
func (i *Issuer) OptionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := i.fromRequest(c)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring invalid token on optional route")
		}
		if claims != nil {
			if viewer, ok := viewerOf(claims); ok {
				c.Locals(viewerKey, viewer)
			}
		}
		return c.Next()
	}
}

// ViewerFrom returns the authenticated user set by a middleware.
func ViewerFrom(c *fiber.Ctx) (domain.Viewer, bool) {
	v, ok := c.Locals(viewerKey).(domain.Viewer)
	return v, ok
}

// fromRequest returns nil claims and no error when no token was sent.
func (i *Issuer) fromRequest(c *fiber.Ctx) (*Claims, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errors.New("malformed authorization header")
	}
	return i.Verify(token)
}

func viewerOf(claims *Claims) (domain.Viewer, bool) {
	if claims.Role != RoleUser {
		return domain.Viewer{}, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Viewer{}, false
	}
	return domain.Viewer{UserID: id, Name: claims.Name}, true
}
