package middleware

import (
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/gofiber/fiber/v2"
)

// ModeratorRequired admits staff and admins. It must run after JWTProtected.
func ModeratorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal.FromContext(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Kind: "NotAuthenticated", Message: "Unauthorized",
			})
		}
		if !principal.CanModerate(p) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Kind: "Forbidden", Message: "Staff or admin access required",
			})
		}
		return c.Next()
	}
}
