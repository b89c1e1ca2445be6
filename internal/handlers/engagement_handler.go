package handlers

import (
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EngagementHandler struct {
	engagement *services.EngagementService
}

func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

func (h *EngagementHandler) Like(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	video, err := h.engagement.Like(c.UserContext(), principal.FromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{VideoID: video.ID.String(), Liked: true, LikesCount: video.LikesCount})
}

func (h *EngagementHandler) Unlike(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	video, err := h.engagement.Unlike(c.UserContext(), principal.FromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.LikeResponse{VideoID: video.ID.String(), Liked: false, LikesCount: video.LikesCount})
}

func (h *EngagementHandler) LikeStatus(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	p := principal.FromContext(c)
	if p == nil {
		return services.ErrNotAuthenticated
	}
	liked, err := h.engagement.HasLiked(c.UserContext(), id, p.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"video_id": id.String(), "liked": liked})
}

func (h *EngagementHandler) Share(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	var req dto.ShareRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	video, err := h.engagement.Share(c.UserContext(), principal.FromContext(c), id, models.SharePlatform(req.Platform))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"video_id": video.ID.String(), "shares_count": video.SharesCount})
}

// RecordView accepts anonymous callers; the principal is used when present.
func (h *EngagementHandler) RecordView(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	var req dto.RecordViewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := services.ViewInput{
		WatchDuration:  req.WatchDuration,
		CompletionRate: req.CompletionRate,
		SessionID:      req.SessionID,
	}
	if req.DeviceInfo != nil {
		in.Device = &models.DeviceInfo{Type: req.DeviceInfo.Type, OS: req.DeviceInfo.OS, Browser: req.DeviceInfo.Browser}
	}
	if req.Location != nil {
		in.Location = &models.GeoLocation{Country: req.Location.Country, City: req.Location.City}
	}

	view, err := h.engagement.RecordView(c.UserContext(), principal.FromContext(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}
