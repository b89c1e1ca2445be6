package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type VideoHandler struct {
	catalog *services.CatalogService
	uploads storage.UploadURLIssuer
}

// NewVideoHandler builds the catalog endpoints. uploads may be nil when no
// object store is configured.
func NewVideoHandler(catalog *services.CatalogService, uploads storage.UploadURLIssuer) *VideoHandler {
	return &VideoHandler{catalog: catalog, uploads: uploads}
}

func (h *VideoHandler) UploadURL(c *fiber.Ctx) error {
	p := principal.FromContext(c)
	if p == nil {
		return services.ErrNotAuthenticated
	}
	if !principal.CanAuthor(p) {
		return services.ErrNotCreator
	}
	if h.uploads == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Uploads are not configured",
		})
	}

	var req dto.UploadURLRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	kind := storage.Kind(req.Kind)
	if kind == "" {
		kind = storage.KindVideo
	}

	ticket, err := h.uploads.IssueUploadURL(c.UserContext(), p.ID, kind, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return badRequest(c, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (h *VideoHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	video, err := h.catalog.CreateDraft(c.UserContext(), principal.FromContext(c), services.CreateDraftInput{
		KitchenID:          req.KitchenID,
		Title:              req.Title,
		Description:        req.Description,
		VideoStorageID:     req.VideoStorageID,
		ThumbnailStorageID: req.ThumbnailStorageID,
		Duration:           req.Duration,
		FileSize:           req.FileSize,
		Resolution:         models.Resolution{Width: req.Resolution.Width, Height: req.Resolution.Height},
		Tags:               req.Tags,
		Cuisine:            req.Cuisine,
		Difficulty:         models.Difficulty(req.Difficulty),
		Visibility:         models.Visibility(req.Visibility),
		IsLive:             req.IsLive,
		LiveSessionID:      req.LiveSessionID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

func (h *VideoHandler) Get(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	video, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(video)
}

func (h *VideoHandler) Update(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	var req dto.UpdateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := services.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Cuisine:     req.Cuisine,
	}
	if req.Difficulty != nil {
		d := models.Difficulty(*req.Difficulty)
		in.Difficulty = &d
	}
	if req.Visibility != nil {
		v := models.Visibility(*req.Visibility)
		in.Visibility = &v
	}

	video, err := h.catalog.Update(c.UserContext(), principal.FromContext(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(video)
}

func (h *VideoHandler) Publish(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	video, err := h.catalog.Publish(c.UserContext(), principal.FromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(video)
}

func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid video ID")
	}
	video, err := h.catalog.SoftDelete(c.UserContext(), principal.FromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(video)
}

func (h *VideoHandler) ListByCreator(c *fiber.Ctx) error {
	creatorID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}
	limit, offset := page(c, 20)

	videos, total, err := h.catalog.ListByCreator(c.UserContext(), principal.FromContext(c), creatorID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse{Items: videos, Total: total, Limit: limit, Offset: offset})
}
