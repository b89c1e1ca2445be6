package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected verifies the bearer token and stores the caller's principal
// on the request.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: resolvePrincipal(cfg.AdminIDs()),
		ErrorHandler:   unauthorized,
	})
}

// OptionalJWT behaves like JWTProtected when an Authorization header is
// sent and passes anonymous requests through without a principal.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: resolvePrincipal(cfg.AdminIDs()),
		ErrorHandler:   unauthorized,
		Filter: func(c *fiber.Ctx) bool {
			return strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == ""
		},
	})
}

func resolvePrincipal(adminIDs []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c, nil)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, nil)
		}
		p, err := principal.FromClaims(claims, adminIDs)
		if err != nil {
			return unauthorized(c, err)
		}
		principal.Set(c, p)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Kind:    "NotAuthenticated",
		Message: "Unauthorized: invalid or expired token",
	})
}
