package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/samirrijal/crewmap/internal/pkg/config"
)

const actorKey = "actor"

// AuthMiddleware requires an HMAC-signed bearer token whose subject becomes
// the acting user. With no secret configured every request passes through
// anonymously.
func AuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)
	keyFn := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return errUnauthorized(c, "missing bearer token")
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, keyFn); err != nil {
			return errUnauthorized(c, "invalid token")
		}
		if claims.Subject == "" {
			return errUnauthorized(c, "token has no subject")
		}

		c.Locals(actorKey, claims.Subject)
		return c.Next()
	}
}

// actor returns the authenticated user, or "" when auth is off.
func actor(c *fiber.Ctx) string {
	s, _ := c.Locals(actorKey).(string)
	return s
}
