package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// writeLimit caps comment and report submissions per IP per minute.
const writeLimit = 30

type Handlers struct {
	Health     *handlers.HealthHandler
	Video      *handlers.VideoHandler
	Engagement *handlers.EngagementHandler
	Live       *handlers.LiveHandler
	Moderation *handlers.ModerationHandler
}

// Setup mounts the API. storage backs the rate limiters; nil keeps the
// counters in process memory.
func Setup(app *fiber.App, cfg *config.Config, h Handlers, storage fiber.Storage) {
	api := app.Group("/api")

	api.Use(ipLimiter(cfg.RateLimit, storage))

	api.Get("/health", h.Health.Check)

	auth := middleware.JWTProtected(cfg)
	optional := middleware.OptionalJWT(cfg)
	writes := ipLimiter(writeLimit, storage)

	// Catalog
	api.Post("/videos/upload-url", auth, h.Video.UploadURL)
	api.Post("/videos", auth, h.Video.Create)
	api.Get("/videos/:id", h.Video.Get)
	api.Patch("/videos/:id", auth, h.Video.Update)
	api.Post("/videos/:id/publish", auth, h.Video.Publish)
	api.Delete("/videos/:id", auth, h.Video.Delete)
	api.Get("/creators/:id/videos", optional, h.Video.ListByCreator)

	// Engagement
	api.Get("/videos/:id/like", auth, h.Engagement.LikeStatus)
	api.Post("/videos/:id/like", auth, h.Engagement.Like)
	api.Delete("/videos/:id/like", auth, h.Engagement.Unlike)
	api.Post("/videos/:id/share", auth, h.Engagement.Share)
	api.Post("/videos/:id/views", optional, h.Engagement.RecordView)
	api.Post("/videos/:id/reports", writes, auth, h.Moderation.CreateReport)

	// Live sessions
	api.Post("/live-sessions", auth, h.Live.Create)
	api.Get("/live-sessions/:id", h.Live.Get)
	api.Post("/live-sessions/:id/status", auth, h.Live.Transition)
	api.Get("/live-sessions/:id/mutes", auth, h.Live.ListMutes)
	api.Post("/live-sessions/:id/mutes", auth, h.Live.Mute)
	api.Delete("/live-sessions/:id/mutes/:user_id", auth, h.Live.Unmute)
	api.Post("/live-sessions/:id/comments", writes, auth, h.Live.SendComment)
	api.Get("/live-sessions/:id/comments", h.Live.ListComments)
	api.Post("/live-sessions/:id/reactions", writes, auth, h.Live.SendReaction)
	api.Get("/live-sessions/:id/reactions", h.Live.ListReactions)

	// Moderation panel
	admin := api.Group("/admin", auth, middleware.ModeratorRequired())
	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Put("/moderation/reports/:id", h.Moderation.ReviewReport)
}

func ipLimiter(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           storage,
	})
}
