package handlers

import (
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	videoID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderation.Report(c.UserContext(), principal.FromContext(c), videoID, services.ReportInput{
		Reason:      models.ReportReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := page(c, 20)
	reports, total, err := h.moderation.ListReports(c.UserContext(), principal.FromContext(c), models.ReportStatus(c.Query("status")), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse{Items: reports, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) ReviewReport(c *fiber.Ctx) error {
	reportID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid report ID")
	}
	var req dto.ReviewReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderation.ReviewReport(c.UserContext(), principal.FromContext(c), reportID, services.ReviewInput{
		Status: models.ReportStatus(req.Status),
		Note:   req.AdminNote,
	})
	if err != nil {
		return err
	}
	return c.JSON(report)
}
