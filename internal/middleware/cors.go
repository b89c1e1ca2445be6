package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// exposedHeaders lets browser clients read request ids and limiter state.
var exposedHeaders = []string{
	fiber.HeaderXRequestID,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	fiber.HeaderRetryAfter,
}

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    strings.Join(exposedHeaders, ", "),
		AllowCredentials: false,
		MaxAge:           600,
	})
}
