// Package authware guards fiber routes with bearer-token verification. Every
// request re-verifies the token against the subject's current stored hash;
// nothing is cached between requests.
package authware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/response"
)

// Locals keys for values stashed by the middleware.
const (
	LocalsClaims   = "auth_claims"
	LocalsUsername = "auth_username"
)

// TokenVerifier is the slice of the authentication service the middleware
// needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.Claims, error)
}

// Config tunes the middleware.
type Config struct {
	Verifier TokenVerifier
	Logger   auth.Logger
}

func (cfg *Config) defaults() {
	if cfg.Verifier == nil {
		panic("authware: Config.Verifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = auth.NewDefaultLogger("AUTHWARE")
	}
}

// RequireUsername admits only the token's own subject to a route carrying a
// :username param. The comparison ignores case; on success the param's
// canonical stored casing and the verified claims are stashed in locals.
func RequireUsername(cfg Config) fiber.Handler {
	cfg.defaults()

	return func(c *fiber.Ctx) error {
		claims, err := verifyRequest(c, cfg)
		if err != nil {
			return response.Error(c, err)
		}

		param := c.Params("username")
		if !strings.EqualFold(claims.Username, param) {
			cfg.Logger.Warn("token subject does not own resource",
				"subject", claims.Username, "param", param)
			return response.Error(c, auth.ErrAccessDenied)
		}

		c.Locals(LocalsClaims, claims)
		c.Locals(LocalsUsername, claims.Username)

		return c.Next()
	}
}

// RequireAdmin admits only verified tokens carrying the admin role.
func RequireAdmin(cfg Config) fiber.Handler {
	cfg.defaults()

	return func(c *fiber.Ctx) error {
		claims, err := verifyRequest(c, cfg)
		if err != nil {
			return response.Error(c, err)
		}

		if claims.Role != auth.RoleAdmin {
			cfg.Logger.Warn("non-admin token on admin route", "subject", claims.Username)
			return response.Error(c, auth.ErrAccessDenied)
		}

		c.Locals(LocalsClaims, claims)
		c.Locals(LocalsUsername, claims.Username)

		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims stashed by the middleware, or nil
// when the route is unguarded.
func ClaimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalsClaims).(*auth.Claims)
	return claims
}

// UsernameFromCtx returns the canonical username stashed by the middleware.
func UsernameFromCtx(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalsUsername).(string)
	return username
}

func verifyRequest(c *fiber.Ctx, cfg Config) (*auth.Claims, error) {
	token, err := tokenFromHeader(c)
	if err != nil {
		return nil, err
	}

	claims, err := cfg.Verifier.VerifyToken(c.UserContext(), token)
	if err != nil {
		if !auth.IsTokenExpired(err) && !auth.IsTokenInvalid(err) {
			cfg.Logger.Error("token verification failed", "error", err)
		}
		return nil, err
	}

	return claims, nil
}

// tokenFromHeader pulls the bearer token out of the Authorization header.
// An absent header and a header without the Bearer scheme both count as no
// token at all.
func tokenFromHeader(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", auth.ErrTokenMissing
	}

	const scheme = "Bearer"
	if len(header) <= len(scheme)+1 || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", auth.ErrTokenMissing
	}

	token := strings.TrimSpace(header[len(scheme):])
	if token == "" {
		return "", auth.ErrTokenMissing
	}

	return token, nil
}
